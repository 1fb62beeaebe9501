package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	passport "battery-passport/internal/passport/domain"
)

// BatteryRepository is the Postgres record store. The batteries table owns
// key uniqueness; inserts never overwrite.
type BatteryRepository struct {
	db *sql.DB
}

// NewBatteryRepository constructs a repository.
func NewBatteryRepository(db *sql.DB) *BatteryRepository {
	return &BatteryRepository{db: db}
}

// Insert persists a single record. A primary-key collision surfaces as
// ErrDuplicateID rather than corrupting or updating the existing row.
func (r *BatteryRepository) Insert(ctx context.Context, record *passport.BatteryRecord) error {
	if r == nil || r.db == nil {
		return errors.New("battery repo: nil db")
	}
	if record == nil {
		return errors.New("battery repo: nil record")
	}
	_, err := r.db.ExecContext(ctx, insertBatterySQL,
		record.ID, record.ProducerName, record.EPRNumber, record.BatteryType, record.BrandName,
		record.Chemistry, record.CapacityAh, record.VoltageV, record.WeightKg, record.BatchSize, record.MfgDate)
	if isUniqueViolation(err) {
		return passport.ErrDuplicateID
	}
	return err
}

// InsertBatch persists all records in input order inside one transaction.
// Any failure rolls the whole batch back; no partial rows stay visible.
func (r *BatteryRepository) InsertBatch(ctx context.Context, records []passport.BatteryRecord) error {
	if r == nil || r.db == nil {
		return errors.New("battery repo: nil db")
	}
	if len(records) == 0 {
		return errors.New("battery repo: empty batch")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range records {
		record := records[i]
		_, err := tx.ExecContext(ctx, insertBatterySQL,
			record.ID, record.ProducerName, record.EPRNumber, record.BatteryType, record.BrandName,
			record.Chemistry, record.CapacityAh, record.VoltageV, record.WeightKg, record.BatchSize, record.MfgDate)
		if err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return passport.ErrDuplicateID
			}
			return err
		}
	}
	return tx.Commit()
}

// Get fetches a record by exact id. Returns (nil, nil) when absent.
func (r *BatteryRepository) Get(ctx context.Context, id string) (*passport.BatteryRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("battery repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, producer_name, epr_number, battery_type, brand_name, chemistry,
	capacity_ah, voltage_v, weight_kg, batch_size, mfg_date
FROM batteries
WHERE id = $1
LIMIT 1`, id)
	return scanBattery(row)
}

// List returns all records ordered by manufacture date, then id. Unit
// records of one batch therefore come out in unit-sequence order.
func (r *BatteryRepository) List(ctx context.Context) ([]passport.BatteryRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("battery repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, producer_name, epr_number, battery_type, brand_name, chemistry,
	capacity_ah, voltage_v, weight_kg, batch_size, mfg_date
FROM batteries
ORDER BY mfg_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []passport.BatteryRecord
	for rows.Next() {
		record, err := scanBattery(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const insertBatterySQL = `
INSERT INTO batteries (
	id, producer_name, epr_number, battery_type, brand_name, chemistry,
	capacity_ah, voltage_v, weight_kg, batch_size, mfg_date
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBattery(row rowScanner) (*passport.BatteryRecord, error) {
	var record passport.BatteryRecord
	if err := row.Scan(
		&record.ID,
		&record.ProducerName,
		&record.EPRNumber,
		&record.BatteryType,
		&record.BrandName,
		&record.Chemistry,
		&record.CapacityAh,
		&record.VoltageV,
		&record.WeightKg,
		&record.BatchSize,
		&record.MfgDate,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	record.MfgDate = record.MfgDate.UTC()
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
