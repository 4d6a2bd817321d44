package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/repository/builder"
	"github.com/mattn/go-sqlite3"
)

const employeesTable = "employees"

var employeeColumns = []string{
	"id", "name", "email", "position", "phone", "address", "birth_date", "gender", "department", "image_url",
}

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a SQL-backed EmployeeRepository. The queries are
// portable between the postgres (lib/pq) and sqlite3 drivers.
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e         domain.Employee
		position  sql.NullString
		phone     sql.NullString
		address   sql.NullString
		birthDate *domain.Date
		gender    sql.NullString
		dept      sql.NullString
		imageURL  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &position, &phone, &address, &birthDate, &gender, &dept, &imageURL); err != nil {
		return nil, err
	}
	e.Position = nullToPtr(position)
	e.Phone = nullToPtr(phone)
	e.Address = nullToPtr(address)
	e.BirthDate = birthDate
	e.Gender = nullToPtr(gender)
	e.Department = nullToPtr(dept)
	e.ImageURL = nullToPtr(imageURL)
	return &e, nil
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func ptrToNull(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func dateToNull(d *domain.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func (r *employeeRepository) Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Insert(employeesTable, employeeColumns[1:]...).
		Values(e.Name, e.Email, ptrToNull(e.Position), ptrToNull(e.Phone), ptrToNull(e.Address),
			dateToNull(e.BirthDate), ptrToNull(e.Gender), ptrToNull(e.Department), ptrToNull(e.ImageURL)).
		Returning("id").
		Build()

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewPhoneConflictError()
		}
		return nil, fmt.Errorf("failed to insert employee: %w", err)
	}

	stored := e.Clone()
	stored.ID = id
	return stored, nil
}

func (r *employeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select(employeeColumns...).
		From(employeesTable).
		Where("id = ?", id).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return e, nil
}

func (r *employeeRepository) FindByPhone(ctx context.Context, phone string) (*domain.Employee, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select(employeeColumns...).
		From(employeesTable).
		Where("phone = ?", phone).
		OrderBy("id ASC").
		Limit(1).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee by phone: %w", err)
	}
	return e, nil
}

func (r *employeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	b := builder.NewSQLBuilder()
	query, args := b.Update(employeesTable).
		Set("name", e.Name).
		Set("email", e.Email).
		Set("position", ptrToNull(e.Position)).
		Set("phone", ptrToNull(e.Phone)).
		Set("address", ptrToNull(e.Address)).
		Set("birth_date", dateToNull(e.BirthDate)).
		Set("gender", ptrToNull(e.Gender)).
		Set("department", ptrToNull(e.Department)).
		Set("image_url", ptrToNull(e.ImageURL)).
		Where("id = ?", e.ID).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewPhoneConflictError()
		}
		return fmt.Errorf("failed to update employee %d: %w", e.ID, err)
	}
	return requireAffected(res, e.ID)
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	b := builder.NewSQLBuilder()
	query, args := b.Delete(employeesTable).
		Where("id = ?", id).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return requireAffected(res, id)
}

func (r *employeeRepository) ListAll(ctx context.Context) ([]domain.Employee, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select(employeeColumns...).
		From(employeesTable).
		OrderBy("id ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return employees, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{ID: id}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
