package passport

import (
	"errors"
	"testing"
	"time"
)

func validSubmission() Submission {
	return Submission{
		ProducerName: "Acme Cells GmbH",
		EPRNumber:    "DE-EPR-4711",
		BatteryType:  "cylindrical",
		BrandName:    "Acme",
		Chemistry:    "LiFePO4",
		CapacityAh:   3.2,
		VoltageV:     3.6,
		WeightKg:     0.045,
		BatchSize:    1,
	}
}

func TestExpandBatchMode(t *testing.T) {
	sub := validSubmission()
	sub.BatchSize = 5
	sub.IsUnique = false

	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	exp, err := Expand(sub, now, func() string { return "m2" })
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if exp.Identifiers.MasterID != "m2" {
		t.Fatalf("expected master id m2, got %s", exp.Identifiers.MasterID)
	}
	if len(exp.Identifiers.UnitIDs) != 0 {
		t.Fatalf("batch mode must not derive unit ids, got %v", exp.Identifiers.UnitIDs)
	}
	if len(exp.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(exp.Records))
	}
	record := exp.Records[0]
	if record.ID != "m2" {
		t.Fatalf("expected record id m2, got %s", record.ID)
	}
	if record.BatchSize != 5 {
		t.Fatalf("expected batch size 5 on aggregate record, got %d", record.BatchSize)
	}
	if exp.PreviewID != "m2" {
		t.Fatalf("expected preview id m2, got %s", exp.PreviewID)
	}
	if !record.MfgDate.Equal(now) {
		t.Fatalf("expected mfg date %s, got %s", now, record.MfgDate)
	}
}

func TestExpandUniqueMode(t *testing.T) {
	sub := validSubmission()
	sub.BatchSize = 3
	sub.IsUnique = true

	exp, err := Expand(sub, time.Now(), func() string { return "m1" })
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{"m1-U1", "m1-U2", "m1-U3"}
	if len(exp.Records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(exp.Records))
	}
	for i, id := range want {
		if exp.Records[i].ID != id {
			t.Fatalf("record %d: expected id %s, got %s", i, id, exp.Records[i].ID)
		}
		if exp.Records[i].BatchSize != 1 {
			t.Fatalf("record %d: expected batch size 1, got %d", i, exp.Records[i].BatchSize)
		}
		if exp.Identifiers.UnitIDs[i] != id {
			t.Fatalf("unit id %d: expected %s, got %s", i, id, exp.Identifiers.UnitIDs[i])
		}
	}
	if exp.PreviewID != "m1-U1" {
		t.Fatalf("expected preview id m1-U1, got %s", exp.PreviewID)
	}
}

func TestExpandRejectsBadBatchSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		sub := validSubmission()
		sub.BatchSize = size
		called := false
		_, err := Expand(sub, time.Now(), func() string {
			called = true
			return "never"
		})
		if !errors.Is(err, ErrInvalidBatchSize) {
			t.Fatalf("batch size %d: expected ErrInvalidBatchSize, got %v", size, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("batch size %d: error must wrap ErrValidation", size)
		}
		if called {
			t.Fatalf("batch size %d: generator must not run for invalid input", size)
		}
	}
}

func TestExpandRejectsNegativeValues(t *testing.T) {
	cases := []func(*Submission){
		func(s *Submission) { s.CapacityAh = -1 },
		func(s *Submission) { s.VoltageV = -0.1 },
		func(s *Submission) { s.WeightKg = -5 },
	}
	for i, mutate := range cases {
		sub := validSubmission()
		mutate(&sub)
		if _, err := Expand(sub, time.Now(), nil); !errors.Is(err, ErrNegativeValue) {
			t.Fatalf("case %d: expected ErrNegativeValue, got %v", i, err)
		}
	}
}

func TestExpandRejectsMissingFields(t *testing.T) {
	sub := validSubmission()
	sub.ProducerName = ""
	if _, err := Expand(sub, time.Now(), nil); !errors.Is(err, ErrEmptyProducer) {
		t.Fatalf("expected ErrEmptyProducer, got %v", err)
	}
	sub = validSubmission()
	sub.EPRNumber = ""
	if _, err := Expand(sub, time.Now(), nil); !errors.Is(err, ErrEmptyEPRNumber) {
		t.Fatalf("expected ErrEmptyEPRNumber, got %v", err)
	}
	sub = validSubmission()
	sub.BrandName = ""
	if _, err := Expand(sub, time.Now(), nil); !errors.Is(err, ErrEmptyBrand) {
		t.Fatalf("expected ErrEmptyBrand, got %v", err)
	}
}
