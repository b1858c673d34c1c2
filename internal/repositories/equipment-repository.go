package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	db "github.com/SimicsGroupSAS/GestLog-sub001/internal/infrastructure/bd"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/types"
)

const equipmentTable = "equipments"

const equipmentFields = `id, code, name, brand, site, purchase_date, recurrence_interval, state, retirement_date, created_at, updated_at`

// Columns the HTTP filter syntax may reference.
var equipmentFilterColumns = map[string]string{
	"code":     "code",
	"name":     "name",
	"brand":    "brand",
	"site":     "site",
	"state":    "state",
	"interval": "recurrence_interval",
}

type EquipmentRepositoryInterface interface {
	GetByCode(ctx context.Context, code string) (*entities.Equipment, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	ListActive(ctx context.Context) ([]entities.Equipment, error)
	Create(ctx context.Context, eq *entities.Equipment) error
	Update(ctx context.Context, eq *entities.Equipment) error
	Delete(ctx context.Context, code string) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func scanEquipment(row pgx.Row, eq *entities.Equipment) error {
	return row.Scan(
		&eq.ID,
		&eq.Code,
		&eq.Name,
		&eq.Brand,
		&eq.Site,
		&eq.PurchaseDate,
		&eq.Interval,
		&eq.State,
		&eq.RetirementDate,
		&eq.CreatedAt,
		&eq.UpdatedAt,
	)
}

func (r *EquipmentRepository) GetByCode(ctx context.Context, code string) (*entities.Equipment, error) {
	query := `SELECT ` + equipmentFields + ` FROM ` + equipmentTable + ` WHERE code = $1`

	var eq entities.Equipment
	if err := scanEquipment(r.storage.QueryRow(ctx, query, code), &eq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

// equipmentListConditions applies the search and filter conditions shared
// by the list query and its count. The pair must stay in lockstep or the
// reported total drifts from what the page shows.
func equipmentListConditions(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"code": like},
			sq.ILike{"name": like},
			sq.ILike{"brand": like},
			sq.ILike{"site": like},
		})
	}
	return db.ApplyFilterConditions(builder, filter, equipmentFilterColumns)
}

func (r *EquipmentRepository) List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	builder := equipmentListConditions(
		sq.Select(equipmentFields).From(equipmentTable).PlaceholderFormat(sq.Dollar),
		filter,
	)

	builder = db.ApplySortAndPagination(builder, filter, equipmentFilterColumns)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("code ASC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []entities.Equipment
	for rows.Next() {
		var eq entities.Equipment
		if err := scanEquipment(rows, &eq); err != nil {
			return nil, 0, err
		}
		list = append(list, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countBuilder := equipmentListConditions(
		sq.Select("COUNT(*)").From(equipmentTable).PlaceholderFormat(sq.Dollar),
		filter,
	)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *EquipmentRepository) ListActive(ctx context.Context) ([]entities.Equipment, error) {
	query := `SELECT ` + equipmentFields + ` FROM ` + equipmentTable + ` WHERE state = $1 ORDER BY code`

	rows, err := r.storage.Query(ctx, query, entities.StateActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []entities.Equipment
	for rows.Next() {
		var eq entities.Equipment
		if err := scanEquipment(rows, &eq); err != nil {
			return nil, err
		}
		list = append(list, eq)
	}
	return list, rows.Err()
}

func (r *EquipmentRepository) Create(ctx context.Context, eq *entities.Equipment) error {
	query := `
        INSERT INTO ` + equipmentTable + ` (code, name, brand, site, purchase_date, recurrence_interval, state, retirement_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (code) DO NOTHING
        RETURNING id`

	err := r.storage.QueryRow(ctx, query,
		eq.Code,
		eq.Name,
		eq.Brand,
		eq.Site,
		eq.PurchaseDate,
		eq.Interval,
		eq.State,
		eq.RetirementDate,
	).Scan(&eq.ID)

	if errors.Is(err, pgx.ErrNoRows) {
		// The unique constraint on code is the authoritative guard.
		return apperrors.ErrConflict
	}
	return err
}

func (r *EquipmentRepository) Update(ctx context.Context, eq *entities.Equipment) error {
	query := `
        UPDATE ` + equipmentTable + `
        SET name = $1, brand = $2, site = $3, purchase_date = $4, recurrence_interval = $5,
            state = $6, retirement_date = $7, updated_at = CURRENT_TIMESTAMP
        WHERE code = $8`

	result, err := r.storage.Exec(ctx, query,
		eq.Name,
		eq.Brand,
		eq.Site,
		eq.PurchaseDate,
		eq.Interval,
		eq.State,
		eq.RetirementDate,
		eq.Code,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes an equipment together with its schedules and follow-ups.
// History removal is intentional here and only here.
func (r *EquipmentRepository) Delete(ctx context.Context, code string) error {
	return WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM follow_ups WHERE equipment_code = $1`, code); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE equipment_code = $1`, code); err != nil {
			return err
		}
		result, err := tx.Exec(ctx, `DELETE FROM `+equipmentTable+` WHERE code = $1`, code)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
