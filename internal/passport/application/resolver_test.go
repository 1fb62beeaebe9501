package application

import (
	"context"
	"errors"
	"testing"
	"time"

	passport "battery-passport/internal/passport/domain"
	"battery-passport/internal/passport/infrastructure/memory"
)

func TestResolveReturnsExactRecord(t *testing.T) {
	repo := memory.NewBatteryRepository()
	record := passport.BatteryRecord{
		ID:           "m1-U1",
		ProducerName: "Acme Cells GmbH",
		EPRNumber:    "DE-EPR-4711",
		BrandName:    "Acme",
		BatchSize:    1,
		MfgDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Insert(context.Background(), &record); err != nil {
		t.Fatalf("seed: %v", err)
	}
	resolver, err := NewVerificationService(repo)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	got, err := resolver.Resolve(context.Background(), "m1-U1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != record.ID || got.EPRNumber != record.EPRNumber {
		t.Fatalf("expected stored record, got %+v", got)
	}
}

func TestResolveNearMissesAreNotFound(t *testing.T) {
	repo := memory.NewBatteryRepository()
	if err := repo.Insert(context.Background(), &passport.BatteryRecord{ID: "m1-U1", BatchSize: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	resolver, err := NewVerificationService(repo)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	for _, id := range []string{"", "m1", "m1-U", "m1-U2", "m1-u1", "m1-U11", passport.DisplayID("m1-U1xxxxxx")} {
		if _, err := resolver.Resolve(context.Background(), id); !errors.Is(err, passport.ErrNotFound) {
			t.Fatalf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
}
