package passport

import "time"

// IdentifierSet is the ordered identifier derivation of one submission.
// UnitIDs is populated only in unique mode, one per unit, ascending.
type IdentifierSet struct {
	MasterID string
	UnitIDs  []string
}

// Expansion is the full output of expanding one submission: the identifier
// set, the records to persist (in the order they must be persisted and
// labeled), and the identifier used for the on-screen preview image.
type Expansion struct {
	Identifiers IdentifierSet
	PreviewID   string
	Records     []BatteryRecord
}

// IDGenerator produces master identifiers. It exists so tests can pin ids.
type IDGenerator func() string

// Expand turns a validated submission into the records to persist.
//
// Batch mode (IsUnique false) yields exactly one record carrying the
// requested batch size as metadata, id == master id. Unique mode yields one
// record per unit, ids masterID-U1..UN, each with batch size 1. Ascending
// unit order is the only ordering guarantee the system makes; it fixes both
// persistence order and label page order.
func Expand(sub Submission, now time.Time, newID IDGenerator) (Expansion, error) {
	if err := sub.Validate(); err != nil {
		return Expansion{}, err
	}
	if newID == nil {
		newID = NewMasterID
	}
	masterID := newID()
	mfgDate := now.UTC()

	base := BatteryRecord{
		ProducerName: sub.ProducerName,
		EPRNumber:    sub.EPRNumber,
		BatteryType:  sub.BatteryType,
		BrandName:    sub.BrandName,
		Chemistry:    sub.Chemistry,
		CapacityAh:   sub.CapacityAh,
		VoltageV:     sub.VoltageV,
		WeightKg:     sub.WeightKg,
		MfgDate:      mfgDate,
	}

	if !sub.IsUnique {
		record := base
		record.ID = masterID
		record.BatchSize = sub.BatchSize
		return Expansion{
			Identifiers: IdentifierSet{MasterID: masterID},
			PreviewID:   masterID,
			Records:     []BatteryRecord{record},
		}, nil
	}

	unitIDs := make([]string, 0, sub.BatchSize)
	records := make([]BatteryRecord, 0, sub.BatchSize)
	for i := 1; i <= sub.BatchSize; i++ {
		unitID := UnitID(masterID, i)
		record := base
		record.ID = unitID
		record.BatchSize = 1
		unitIDs = append(unitIDs, unitID)
		records = append(records, record)
	}
	return Expansion{
		Identifiers: IdentifierSet{MasterID: masterID, UnitIDs: unitIDs},
		PreviewID:   unitIDs[0],
		Records:     records,
	}, nil
}
