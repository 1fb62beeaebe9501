package passport

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the class all submission validation failures wrap.
	ErrValidation = errors.New("passport: invalid submission")
	// ErrEmptyProducer is returned when producer name is missing.
	ErrEmptyProducer = fmt.Errorf("%w: producer name required", ErrValidation)
	// ErrEmptyEPRNumber is returned when the EPR registration number is missing.
	ErrEmptyEPRNumber = fmt.Errorf("%w: epr number required", ErrValidation)
	// ErrEmptyBrand is returned when brand name is missing.
	ErrEmptyBrand = fmt.Errorf("%w: brand name required", ErrValidation)
	// ErrInvalidBatchSize is returned when batch size is below one.
	ErrInvalidBatchSize = fmt.Errorf("%w: batch size must be >= 1", ErrValidation)
	// ErrNegativeValue is returned when capacity, voltage or weight is negative.
	ErrNegativeValue = fmt.Errorf("%w: capacity/voltage/weight must be non-negative", ErrValidation)

	// ErrDuplicateID indicates an insert hit an existing id. The generator is
	// collision-resistant, so this is an integrity fault, not an update path.
	ErrDuplicateID = errors.New("passport: duplicate record id")
	// ErrNotFound indicates no record exists for an exact id. This is a normal
	// resolver outcome (mistyped or counterfeit scans), not a system failure.
	ErrNotFound = errors.New("passport: record not found")
)
