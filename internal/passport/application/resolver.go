package application

import (
	"context"
	"errors"

	"battery-passport/internal/observability/metrics"
	passport "battery-passport/internal/passport/domain"
)

// VerificationService resolves scanned identifiers to records.
type VerificationService struct {
	repo passport.BatteryRepository
}

// NewVerificationService constructs the resolver.
func NewVerificationService(repo passport.BatteryRepository) (*VerificationService, error) {
	if repo == nil {
		return nil, errors.New("verification service: nil repo")
	}
	return &VerificationService{repo: repo}, nil
}

// Resolve looks up a record by exact id. A miss returns ErrNotFound, which
// callers render as an "unverified" outcome, not a failure. Labels print a
// truncated id for readability; that prefix is never valid here.
func (s *VerificationService) Resolve(ctx context.Context, id string) (*passport.BatteryRecord, error) {
	if id == "" {
		metrics.IncVerify(metrics.VerifyNotFound)
		return nil, passport.ErrNotFound
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		metrics.IncVerify(metrics.ResultError)
		return nil, err
	}
	if record == nil {
		metrics.IncVerify(metrics.VerifyNotFound)
		return nil, passport.ErrNotFound
	}
	metrics.IncVerify(metrics.VerifyFound)
	return record, nil
}
