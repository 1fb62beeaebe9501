package passport

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// masterIDLength is the number of hex characters kept from a fresh UUIDv4.
// The original label format used 12; 20 chars keep 80 random bits, which
// holds the birthday-collision probability below 1e-6 even at a billion
// issued identifiers. Labels still print a shorter prefix for humans, but
// lookup always uses the full id.
const masterIDLength = 20

// NewMasterID returns a fresh opaque master identifier. Identifiers are
// lowercase hex, safe for URLs and filenames without encoding.
func NewMasterID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:masterIDLength]
}

// UnitID derives the identifier of the i-th unit (1-based) of a batch.
func UnitID(masterID string, i int) string {
	return masterID + "-U" + strconv.Itoa(i)
}

// DisplayID shortens an identifier for printing on a label. Display only;
// never valid for lookup.
func DisplayID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
