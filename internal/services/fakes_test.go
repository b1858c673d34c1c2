package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/types"
)

// In-memory repository doubles mirroring the Postgres semantics the
// services rely on: unique constraints behave like the real ON CONFLICT
// clauses, lookups return copies so callers must go through Update.

type fakeEquipmentRepo struct {
	items map[string]entities.Equipment
}

func newFakeEquipmentRepo() *fakeEquipmentRepo {
	return &fakeEquipmentRepo{items: make(map[string]entities.Equipment)}
}

func (r *fakeEquipmentRepo) GetByCode(_ context.Context, code string) (*entities.Equipment, error) {
	eq, ok := r.items[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := eq
	return &cp, nil
}

func (r *fakeEquipmentRepo) List(_ context.Context, _ types.Filter) ([]entities.Equipment, uint64, error) {
	list := r.sorted()
	return list, uint64(len(list)), nil
}

func (r *fakeEquipmentRepo) ListActive(_ context.Context) ([]entities.Equipment, error) {
	var list []entities.Equipment
	for _, eq := range r.sorted() {
		if eq.State == entities.StateActive {
			list = append(list, eq)
		}
	}
	return list, nil
}

func (r *fakeEquipmentRepo) Create(_ context.Context, eq *entities.Equipment) error {
	if _, ok := r.items[eq.Code]; ok {
		return apperrors.ErrConflict
	}
	r.items[eq.Code] = *eq
	return nil
}

func (r *fakeEquipmentRepo) Update(_ context.Context, eq *entities.Equipment) error {
	if _, ok := r.items[eq.Code]; !ok {
		return apperrors.ErrNotFound
	}
	r.items[eq.Code] = *eq
	return nil
}

func (r *fakeEquipmentRepo) Delete(_ context.Context, code string) error {
	if _, ok := r.items[code]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.items, code)
	return nil
}

func (r *fakeEquipmentRepo) sorted() []entities.Equipment {
	var list []entities.Equipment
	for _, eq := range r.items {
		list = append(list, eq)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Code < list[b].Code })
	return list
}

type scheduleKey struct {
	code string
	year int
}

type fakeScheduleRepo struct {
	items map[scheduleKey]entities.Schedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{items: make(map[scheduleKey]entities.Schedule)}
}

func (r *fakeScheduleRepo) Get(_ context.Context, code string, year int) (*entities.Schedule, error) {
	s, ok := r.items[scheduleKey{code, year}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := s
	cp.Weeks = append([]bool(nil), s.Weeks...)
	return &cp, nil
}

func (r *fakeScheduleRepo) ListByCode(_ context.Context, code string) ([]entities.Schedule, error) {
	var list []entities.Schedule
	for key, s := range r.items {
		if key.code == code {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Year < list[b].Year })
	return list, nil
}

func (r *fakeScheduleRepo) ListByYear(_ context.Context, year int) ([]entities.Schedule, error) {
	var list []entities.Schedule
	for key, s := range r.items {
		if key.year == year {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].EquipmentCode < list[b].EquipmentCode })
	return list, nil
}

func (r *fakeScheduleRepo) Upsert(_ context.Context, s *entities.Schedule) error {
	r.items[scheduleKey{s.EquipmentCode, s.Year}] = *s
	return nil
}

func (r *fakeScheduleRepo) Insert(_ context.Context, s *entities.Schedule) error {
	key := scheduleKey{s.EquipmentCode, s.Year}
	if _, ok := r.items[key]; ok {
		return apperrors.ErrConflict
	}
	r.items[key] = *s
	return nil
}

func (r *fakeScheduleRepo) DeleteByCode(_ context.Context, code string) error {
	for key := range r.items {
		if key.code == code {
			delete(r.items, key)
		}
	}
	return nil
}

func (r *fakeScheduleRepo) SyncEquipmentInfo(_ context.Context, eq *entities.Equipment) error {
	for key, s := range r.items {
		if key.code == eq.Code {
			s.Name = eq.Name
			s.Brand = eq.Brand
			s.Site = eq.Site
			r.items[key] = s
		}
	}
	return nil
}

type fakeFollowUpRepo struct {
	items map[uuid.UUID]entities.FollowUp
}

func newFakeFollowUpRepo() *fakeFollowUpRepo {
	return &fakeFollowUpRepo{items: make(map[uuid.UUID]entities.FollowUp)}
}

func (r *fakeFollowUpRepo) ListByCode(_ context.Context, code string) ([]entities.FollowUp, error) {
	var list []entities.FollowUp
	for _, f := range r.items {
		if f.EquipmentCode == code {
			list = append(list, f)
		}
	}
	sortFollowUps(list)
	return list, nil
}

func (r *fakeFollowUpRepo) ListPendingByCode(_ context.Context, code string) ([]entities.FollowUp, error) {
	var list []entities.FollowUp
	for _, f := range r.items {
		if f.EquipmentCode == code && f.Status == entities.StatusPending {
			list = append(list, f)
		}
	}
	sortFollowUps(list)
	return list, nil
}

func (r *fakeFollowUpRepo) ListByYear(_ context.Context, year int) ([]entities.FollowUp, error) {
	var list []entities.FollowUp
	for _, f := range r.items {
		if f.Year == year {
			list = append(list, f)
		}
	}
	sortFollowUps(list)
	return list, nil
}

func (r *fakeFollowUpRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.FollowUp, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := f
	return &cp, nil
}

func (r *fakeFollowUpRepo) FindByTuple(_ context.Context, code string, week, year int, mtype entities.MaintenanceType) (*entities.FollowUp, error) {
	for _, f := range r.items {
		if f.EquipmentCode == code && f.Week == week && f.Year == year && f.Type == mtype {
			cp := f
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeFollowUpRepo) CreatePending(_ context.Context, f *entities.FollowUp) error {
	if f.Type == entities.TypePreventive {
		for _, existing := range r.items {
			if existing.EquipmentCode == f.EquipmentCode &&
				existing.Week == f.Week &&
				existing.Year == f.Year &&
				existing.Type == entities.TypePreventive {
				// mirrors the partial unique index: conflict is a no-op
				return nil
			}
		}
	}
	return r.Insert(context.Background(), f)
}

func (r *fakeFollowUpRepo) Insert(_ context.Context, f *entities.FollowUp) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.items[f.ID] = *f
	return nil
}

func (r *fakeFollowUpRepo) Update(_ context.Context, f *entities.FollowUp) error {
	if _, ok := r.items[f.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.items[f.ID] = *f
	return nil
}

func (r *fakeFollowUpRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func sortFollowUps(list []entities.FollowUp) {
	sort.Slice(list, func(a, b int) bool {
		if list[a].Year != list[b].Year {
			return list[a].Year < list[b].Year
		}
		if list[a].Week != list[b].Week {
			return list[a].Week < list[b].Week
		}
		return list[a].ID.String() < list[b].ID.String()
	})
}

type fakeCache struct {
	items map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]string)}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.items[key] = fmt.Sprintf("%v", value)
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	return c.items[key], nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}
