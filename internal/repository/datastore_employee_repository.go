package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/employee_records/internal/domain"
)

// EmployeeKind is the datastore kind employee entities are stored under.
const EmployeeKind = "Employee"

// employeeEntity is the datastore shape of an Employee. Empty strings stand for absent values.
type employeeEntity struct {
	Name       string `datastore:"Name"`
	Email      string `datastore:"Email"`
	Position   string `datastore:"Position,noindex"`
	Phone      string `datastore:"Phone"`
	Address    string `datastore:"Address,noindex"`
	BirthDate  string `datastore:"BirthDate,noindex"`
	Gender     string `datastore:"Gender,noindex"`
	Department string `datastore:"Department"`
	ImageURL   string `datastore:"ImageURL,noindex"`
}

func toEntity(e *domain.Employee) *employeeEntity {
	ent := &employeeEntity{
		Name:       e.Name,
		Email:      e.Email,
		Position:   domain.Deref(e.Position),
		Phone:      domain.Deref(e.Phone),
		Address:    domain.Deref(e.Address),
		Gender:     domain.Deref(e.Gender),
		Department: domain.Deref(e.Department),
		ImageURL:   domain.Deref(e.ImageURL),
	}
	if e.BirthDate != nil {
		ent.BirthDate = e.BirthDate.String()
	}
	return ent
}

func fromEntity(key *datastore.Key, ent *employeeEntity) (*domain.Employee, error) {
	e := &domain.Employee{
		ID:         key.ID,
		Name:       ent.Name,
		Email:      ent.Email,
		Position:   domain.StringPtr(ent.Position),
		Phone:      domain.StringPtr(ent.Phone),
		Address:    domain.StringPtr(ent.Address),
		Gender:     domain.StringPtr(ent.Gender),
		Department: domain.StringPtr(ent.Department),
		ImageURL:   domain.StringPtr(ent.ImageURL),
	}
	if ent.BirthDate != "" {
		d, err := domain.ParseDate(ent.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("employee %d has corrupt birth date %q: %w", key.ID, ent.BirthDate, err)
		}
		e.BirthDate = &d
	}
	return e, nil
}

// DatastoreEmployeeRepository stores employees as Cloud Datastore entities with numeric keys.
type DatastoreEmployeeRepository struct {
	client *datastore.Client
}

// NewDatastoreEmployeeRepository wraps an existing datastore client.
func NewDatastoreEmployeeRepository(client *datastore.Client) *DatastoreEmployeeRepository {
	return &DatastoreEmployeeRepository{client: client}
}

func (r *DatastoreEmployeeRepository) Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	key, err := r.client.Put(ctx, datastore.IncompleteKey(EmployeeKind, nil), toEntity(e))
	if err != nil {
		return nil, fmt.Errorf("failed to insert employee: %w", err)
	}
	stored := e.Clone()
	stored.ID = key.ID
	return stored, nil
}

func (r *DatastoreEmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	key := datastore.IDKey(EmployeeKind, id, nil)
	var ent employeeEntity
	if err := r.client.Get(ctx, key, &ent); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return fromEntity(key, &ent)
}

func (r *DatastoreEmployeeRepository) FindByPhone(ctx context.Context, phone string) (*domain.Employee, error) {
	q := datastore.NewQuery(EmployeeKind).FilterField("Phone", "=", phone).Limit(1)

	var ents []employeeEntity
	keys, err := r.client.GetAll(ctx, q, &ents)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee by phone: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return fromEntity(keys[0], &ents[0])
}

func (r *DatastoreEmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	key := datastore.IDKey(EmployeeKind, e.ID, nil)
	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var existing employeeEntity
		if err := tx.Get(key, &existing); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return &domain.NotFoundError{ID: e.ID}
			}
			return err
		}
		_, err := tx.Put(key, toEntity(e))
		return err
	})
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return notFound
		}
		return fmt.Errorf("failed to update employee %d: %w", e.ID, err)
	}
	return nil
}

func (r *DatastoreEmployeeRepository) Delete(ctx context.Context, id int64) error {
	key := datastore.IDKey(EmployeeKind, id, nil)
	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var existing employeeEntity
		if err := tx.Get(key, &existing); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return &domain.NotFoundError{ID: id}
			}
			return err
		}
		return tx.Delete(key)
	})
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return notFound
		}
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return nil
}

func (r *DatastoreEmployeeRepository) ListAll(ctx context.Context) ([]domain.Employee, error) {
	q := datastore.NewQuery(EmployeeKind).Order("__key__")

	var ents []employeeEntity
	keys, err := r.client.GetAll(ctx, q, &ents)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]domain.Employee, 0, len(keys))
	for i, key := range keys {
		e, err := fromEntity(key, &ents[i])
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, nil
}
