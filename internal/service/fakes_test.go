package service

import (
	"context"
	"sort"
	"sync"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/model"
	"github.com/duccv/medrecords-api/internal/repository"
)

type memDrugRepo struct {
	mu      sync.Mutex
	records map[string]model.DrugRecord
	saves   int
}

func newMemDrugRepo() *memDrugRepo {
	return &memDrugRepo{records: map[string]model.DrugRecord{}}
}

func (r *memDrugRepo) Save(_ context.Context, rec model.DrugRecord) (model.DrugRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ApplicationNumber] = rec
	r.saves++
	return rec, nil
}

func (r *memDrugRepo) FindByApplicationNumber(_ context.Context, id string) (model.DrugRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return model.DrugRecord{}, apperror.RecordNotFound(id)
	}
	return rec, nil
}

func (r *memDrugRepo) page(match func(model.DrugRecord) bool, p model.PageRequest) ([]model.DrugRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []model.DrugRecord
	for _, rec := range r.records {
		if match(rec) {
			all = append(all, rec)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ApplicationNumber < all[j].ApplicationNumber })

	start := int(p.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memDrugRepo) FindAll(_ context.Context, p model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.page(func(model.DrugRecord) bool { return true }, p)
}

func (r *memDrugRepo) FindByManufacturerName(_ context.Context, name string, p model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.page(func(rec model.DrugRecord) bool { return rec.ManufacturerName == name }, p)
}

func (r *memDrugRepo) FindBySubstanceName(_ context.Context, name string, p model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.page(func(rec model.DrugRecord) bool { return rec.SubstanceName == name }, p)
}

func (r *memDrugRepo) FindByProductNumber(_ context.Context, pn string, p model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.page(func(rec model.DrugRecord) bool {
		for _, n := range rec.ProductNumbers {
			if n == pn {
				return true
			}
		}
		return false
	}, p)
}

var _ repository.DrugRecordRepository = (*memDrugRepo)(nil)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := repository.NormalizeEmail(u.Email)
	if _, ok := r.users[email]; ok {
		return apperror.ErrRegistrationConflict
	}
	u.Email = email
	r.users[email] = u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[repository.NormalizeEmail(email)]
	if !ok {
		return model.User{}, apperror.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[repository.NormalizeEmail(email)]
	return ok, nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

// fakeRegistry records the last request and replies with a canned body or error.
type fakeRegistry struct {
	body  string
	err   error
	calls int

	lastField, lastValue, lastQuery string
	lastPage, lastSize              int
}

func (f *fakeRegistry) FetchRegistryData(_ context.Context, field, value string, page, size int) (string, error) {
	f.calls++
	f.lastField, f.lastValue, f.lastPage, f.lastSize = field, value, page, size
	return f.body, f.err
}

func (f *fakeRegistry) Fetch(_ context.Context, query string, page, size int) (string, error) {
	f.calls++
	f.lastQuery, f.lastPage, f.lastSize = query, page, size
	return f.body, f.err
}
