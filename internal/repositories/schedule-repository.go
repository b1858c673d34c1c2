package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
)

const scheduleTable = "schedules"

const scheduleFields = `id, equipment_code, year, weeks, recurrence_interval, name, brand, site, created_at, updated_at`

type ScheduleRepositoryInterface interface {
	Get(ctx context.Context, code string, year int) (*entities.Schedule, error)
	ListByCode(ctx context.Context, code string) ([]entities.Schedule, error)
	ListByYear(ctx context.Context, year int) ([]entities.Schedule, error)
	// Upsert inserts the schedule or, when (code, year) already exists,
	// replaces its mask and interval. The unique constraint is the
	// authoritative duplicate guard.
	Upsert(ctx context.Context, s *entities.Schedule) error
	// Insert creates the schedule only when absent; an existing (code,
	// year) row is left untouched, which is what makes the orchestrator
	// pass idempotent.
	Insert(ctx context.Context, s *entities.Schedule) error
	DeleteByCode(ctx context.Context, code string) error
	// SyncEquipmentInfo refreshes the denormalized name/brand/site copies
	// on every schedule of the equipment. Derived-data cache, not a
	// relationship.
	SyncEquipmentInfo(ctx context.Context, eq *entities.Equipment) error
}

type ScheduleRepository struct {
	storage *pgxpool.Pool
}

func NewScheduleRepository(storage *pgxpool.Pool) ScheduleRepositoryInterface {
	return &ScheduleRepository{storage: storage}
}

func scanSchedule(row pgx.Row, s *entities.Schedule) error {
	return row.Scan(
		&s.ID,
		&s.EquipmentCode,
		&s.Year,
		&s.Weeks,
		&s.Interval,
		&s.Name,
		&s.Brand,
		&s.Site,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

func (r *ScheduleRepository) Get(ctx context.Context, code string, year int) (*entities.Schedule, error) {
	query := `SELECT ` + scheduleFields + ` FROM ` + scheduleTable + ` WHERE equipment_code = $1 AND year = $2`

	var s entities.Schedule
	if err := scanSchedule(r.storage.QueryRow(ctx, query, code, year), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepository) ListByCode(ctx context.Context, code string) ([]entities.Schedule, error) {
	query := `SELECT ` + scheduleFields + ` FROM ` + scheduleTable + ` WHERE equipment_code = $1 ORDER BY year`
	return r.list(ctx, query, code)
}

func (r *ScheduleRepository) ListByYear(ctx context.Context, year int) ([]entities.Schedule, error) {
	query := `SELECT ` + scheduleFields + ` FROM ` + scheduleTable + ` WHERE year = $1 ORDER BY equipment_code`
	return r.list(ctx, query, year)
}

func (r *ScheduleRepository) list(ctx context.Context, query string, args ...interface{}) ([]entities.Schedule, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []entities.Schedule
	for rows.Next() {
		var s entities.Schedule
		if err := scanSchedule(rows, &s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *ScheduleRepository) Upsert(ctx context.Context, s *entities.Schedule) error {
	query := `
        INSERT INTO ` + scheduleTable + ` (equipment_code, year, weeks, recurrence_interval, name, brand, site)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (equipment_code, year)
        DO UPDATE SET
            weeks = EXCLUDED.weeks,
            recurrence_interval = EXCLUDED.recurrence_interval,
            name = EXCLUDED.name,
            brand = EXCLUDED.brand,
            site = EXCLUDED.site,
            updated_at = CURRENT_TIMESTAMP
        RETURNING id`

	return r.storage.QueryRow(ctx, query,
		s.EquipmentCode,
		s.Year,
		s.Weeks,
		s.Interval,
		s.Name,
		s.Brand,
		s.Site,
	).Scan(&s.ID)
}

func (r *ScheduleRepository) Insert(ctx context.Context, s *entities.Schedule) error {
	query := `
        INSERT INTO ` + scheduleTable + ` (equipment_code, year, weeks, recurrence_interval, name, brand, site)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (equipment_code, year) DO NOTHING
        RETURNING id`

	err := r.storage.QueryRow(ctx, query,
		s.EquipmentCode,
		s.Year,
		s.Weeks,
		s.Interval,
		s.Name,
		s.Brand,
		s.Site,
	).Scan(&s.ID)

	if errors.Is(err, pgx.ErrNoRows) {
		// A concurrent writer got there first; treat as a no-op.
		return apperrors.ErrConflict
	}
	return err
}

func (r *ScheduleRepository) DeleteByCode(ctx context.Context, code string) error {
	_, err := r.storage.Exec(ctx, `DELETE FROM `+scheduleTable+` WHERE equipment_code = $1`, code)
	return err
}

func (r *ScheduleRepository) SyncEquipmentInfo(ctx context.Context, eq *entities.Equipment) error {
	query := `
        UPDATE ` + scheduleTable + `
        SET name = $1, brand = $2, site = $3, updated_at = CURRENT_TIMESTAMP
        WHERE equipment_code = $4`

	_, err := r.storage.Exec(ctx, query, eq.Name, eq.Brand, eq.Site, eq.Code)
	return err
}
