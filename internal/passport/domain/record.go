package passport

import (
	"context"
	"time"
)

// BatteryRecord is one persisted unit or batch entry. Records are written
// once at issuance and never updated or deleted afterwards.
type BatteryRecord struct {
	ID           string
	ProducerName string
	EPRNumber    string
	BatteryType  string
	BrandName    string
	Chemistry    string
	CapacityAh   float64
	VoltageV     float64
	WeightKg     float64
	BatchSize    int
	MfgDate      time.Time
}

// Submission is the ephemeral registration input. It is never persisted as
// such; the batch expander turns it into one or more BatteryRecords.
type Submission struct {
	ProducerName string
	EPRNumber    string
	BatteryType  string
	BrandName    string
	Chemistry    string
	CapacityAh   float64
	VoltageV     float64
	WeightKg     float64
	BatchSize    int
	IsUnique     bool
}

// Validate checks a submission before any identifier is generated.
func (s Submission) Validate() error {
	if s.ProducerName == "" {
		return ErrEmptyProducer
	}
	if s.EPRNumber == "" {
		return ErrEmptyEPRNumber
	}
	if s.BrandName == "" {
		return ErrEmptyBrand
	}
	if s.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if s.CapacityAh < 0 || s.VoltageV < 0 || s.WeightKg < 0 {
		return ErrNegativeValue
	}
	return nil
}

// BatteryRepository persists battery records keyed by id. Insert must never
// overwrite an existing record; a key collision surfaces as ErrDuplicateID.
// Get returns (nil, nil) when no record with that exact id exists.
// InsertBatch persists all records in input order as one atomic unit: either
// every record becomes visible or none does.
type BatteryRepository interface {
	Insert(ctx context.Context, record *BatteryRecord) error
	InsertBatch(ctx context.Context, records []BatteryRecord) error
	Get(ctx context.Context, id string) (*BatteryRecord, error)
	List(ctx context.Context) ([]BatteryRecord, error)
}
