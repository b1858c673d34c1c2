package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
)

const followUpTable = "follow_ups"

const followUpFields = `id, equipment_code, week, year, type, description, responsible, cost, observations,
	registration_date, execution_date, status, recurrence_interval, created_at, updated_at`

type FollowUpRepositoryInterface interface {
	ListByCode(ctx context.Context, code string) ([]entities.FollowUp, error)
	ListPendingByCode(ctx context.Context, code string) ([]entities.FollowUp, error)
	ListByYear(ctx context.Context, year int) ([]entities.FollowUp, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.FollowUp, error)
	// FindByTuple looks up the single preventive follow-up of a (code,
	// week, year); corrective follow-ups are not unique per tuple.
	FindByTuple(ctx context.Context, code string, week, year int, mtype entities.MaintenanceType) (*entities.FollowUp, error)
	// CreatePending inserts a reconciler-generated pending follow-up; a
	// tuple conflict is an idempotent no-op.
	CreatePending(ctx context.Context, f *entities.FollowUp) error
	// Insert appends a follow-up unconditionally (corrective history).
	Insert(ctx context.Context, f *entities.FollowUp) error
	Update(ctx context.Context, f *entities.FollowUp) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type FollowUpRepository struct {
	storage *pgxpool.Pool
}

func NewFollowUpRepository(storage *pgxpool.Pool) FollowUpRepositoryInterface {
	return &FollowUpRepository{storage: storage}
}

func scanFollowUp(row pgx.Row, f *entities.FollowUp) error {
	return row.Scan(
		&f.ID,
		&f.EquipmentCode,
		&f.Week,
		&f.Year,
		&f.Type,
		&f.Description,
		&f.Responsible,
		&f.Cost,
		&f.Observations,
		&f.RegistrationDate,
		&f.ExecutionDate,
		&f.Status,
		&f.Interval,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
}

func (r *FollowUpRepository) list(ctx context.Context, query string, args ...interface{}) ([]entities.FollowUp, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []entities.FollowUp
	for rows.Next() {
		var f entities.FollowUp
		if err := scanFollowUp(rows, &f); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func (r *FollowUpRepository) ListByCode(ctx context.Context, code string) ([]entities.FollowUp, error) {
	query := `SELECT ` + followUpFields + ` FROM ` + followUpTable + ` WHERE equipment_code = $1 ORDER BY year, week`
	return r.list(ctx, query, code)
}

func (r *FollowUpRepository) ListPendingByCode(ctx context.Context, code string) ([]entities.FollowUp, error) {
	query := `SELECT ` + followUpFields + ` FROM ` + followUpTable + `
		WHERE equipment_code = $1 AND status = $2 ORDER BY year, week`
	return r.list(ctx, query, code, entities.StatusPending)
}

func (r *FollowUpRepository) ListByYear(ctx context.Context, year int) ([]entities.FollowUp, error) {
	query := `SELECT ` + followUpFields + ` FROM ` + followUpTable + ` WHERE year = $1 ORDER BY equipment_code, week`
	return r.list(ctx, query, year)
}

func (r *FollowUpRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.FollowUp, error) {
	query := `SELECT ` + followUpFields + ` FROM ` + followUpTable + ` WHERE id = $1`

	var f entities.FollowUp
	if err := scanFollowUp(r.storage.QueryRow(ctx, query, id), &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FollowUpRepository) FindByTuple(ctx context.Context, code string, week, year int, mtype entities.MaintenanceType) (*entities.FollowUp, error) {
	query := `SELECT ` + followUpFields + ` FROM ` + followUpTable + `
		WHERE equipment_code = $1 AND week = $2 AND year = $3 AND type = $4
		LIMIT 1`

	var f entities.FollowUp
	if err := scanFollowUp(r.storage.QueryRow(ctx, query, code, week, year, mtype), &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

const followUpInsertQuery = `
    INSERT INTO ` + followUpTable + ` (id, equipment_code, week, year, type, description, responsible, cost,
        observations, registration_date, execution_date, status, recurrence_interval)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func (r *FollowUpRepository) CreatePending(ctx context.Context, f *entities.FollowUp) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	// The partial unique index on preventive tuples turns a concurrent
	// duplicate into a clean no-op.
	query := followUpInsertQuery + `
    ON CONFLICT (equipment_code, week, year, type) WHERE type = 'Preventivo'
    DO NOTHING`

	_, err := r.storage.Exec(ctx, query, r.insertArgs(f)...)
	return err
}

func (r *FollowUpRepository) Insert(ctx context.Context, f *entities.FollowUp) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := r.storage.Exec(ctx, followUpInsertQuery, r.insertArgs(f)...)
	return err
}

func (r *FollowUpRepository) insertArgs(f *entities.FollowUp) []interface{} {
	return []interface{}{
		f.ID,
		f.EquipmentCode,
		f.Week,
		f.Year,
		f.Type,
		f.Description,
		f.Responsible,
		f.Cost,
		f.Observations,
		f.RegistrationDate,
		f.ExecutionDate,
		f.Status,
		f.Interval,
	}
}

func (r *FollowUpRepository) Update(ctx context.Context, f *entities.FollowUp) error {
	query := `
        UPDATE ` + followUpTable + `
        SET description = $1, responsible = $2, cost = $3, observations = $4,
            execution_date = $5, status = $6, updated_at = CURRENT_TIMESTAMP
        WHERE id = $7`

	result, err := r.storage.Exec(ctx, query,
		f.Description,
		f.Responsible,
		f.Cost,
		f.Observations,
		f.ExecutionDate,
		f.Status,
		f.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *FollowUpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM `+followUpTable+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
