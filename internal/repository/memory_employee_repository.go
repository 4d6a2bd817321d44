package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/locvowork/employee_records/internal/domain"
)

// MemoryEmployeeRepository keeps employees in process memory.
// Phone uniqueness is enforced here as well, mirroring the unique index of the SQL schema.
type MemoryEmployeeRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Employee
}

// NewMemoryEmployeeRepository creates an empty in-memory store.
func NewMemoryEmployeeRepository() *MemoryEmployeeRepository {
	return &MemoryEmployeeRepository{byID: make(map[int64]*domain.Employee)}
}

func (r *MemoryEmployeeRepository) Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phoneTakenLocked(e.Phone, 0) {
		return nil, domain.NewPhoneConflictError()
	}

	r.nextID++
	stored := e.Clone()
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryEmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byID[id].Clone(), nil
}

func (r *MemoryEmployeeRepository) FindByPhone(ctx context.Context, phone string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.byID {
		if e.Phone != nil && *e.Phone == phone {
			return e.Clone(), nil
		}
	}
	return nil, nil
}

func (r *MemoryEmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[e.ID]; !ok {
		return &domain.NotFoundError{ID: e.ID}
	}
	if r.phoneTakenLocked(e.Phone, e.ID) {
		return domain.NewPhoneConflictError()
	}
	r.byID[e.ID] = e.Clone()
	return nil
}

func (r *MemoryEmployeeRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return &domain.NotFoundError{ID: id}
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryEmployeeRepository) ListAll(ctx context.Context) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employees := make([]domain.Employee, 0, len(r.byID))
	for _, e := range r.byID {
		employees = append(employees, *e.Clone())
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func (r *MemoryEmployeeRepository) phoneTakenLocked(phone *string, exceptID int64) bool {
	if phone == nil {
		return false
	}
	for id, e := range r.byID {
		if id != exceptID && e.Phone != nil && *e.Phone == *phone {
			return true
		}
	}
	return false
}
