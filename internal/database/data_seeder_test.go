package database

import (
	"context"
	"errors"
	"testing"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	created   []domain.EmployeeInput
	deleted   []int64
	employees []domain.Employee
	failAt    int
}

func (f *fakeWriter) Create(_ context.Context, in domain.EmployeeInput, _ *domain.ImageUpload) (*domain.Employee, error) {
	if f.failAt > 0 && len(f.created)+1 == f.failAt {
		return nil, errors.New("boom")
	}
	f.created = append(f.created, in)
	return &domain.Employee{ID: int64(len(f.created)), Name: in.Name, Email: in.Email}, nil
}

func (f *fakeWriter) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeWriter) List(context.Context) ([]domain.Employee, error) {
	return f.employees, nil
}

func TestSeedData(t *testing.T) {
	w := &fakeWriter{}
	n, err := NewDataSeeder(w).SeedData(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	phones := map[string]bool{}
	for _, in := range w.created {
		assert.NotEmpty(t, in.Name)
		assert.NotEmpty(t, in.Email)
		_, err := domain.ParseDate(in.BirthDate)
		assert.NoError(t, err)
		assert.False(t, phones[in.Phone], "duplicate phone %s", in.Phone)
		phones[in.Phone] = true
	}
}

func TestSeedData_StopsOnError(t *testing.T) {
	w := &fakeWriter{failAt: 3}
	n, err := NewDataSeeder(w).SeedData(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, 2, n)
}

func TestClearData(t *testing.T) {
	w := &fakeWriter{employees: []domain.Employee{{ID: 4}, {ID: 9}}}
	n, err := NewDataSeeder(w).ClearData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{4, 9}, w.deleted)
}

func TestGetPresetCount(t *testing.T) {
	assert.Equal(t, 10, GetPresetCount(PresetSmall))
	assert.Equal(t, 100, GetPresetCount(PresetMedium))
	assert.Equal(t, 1000, GetPresetCount(PresetLarge))
	assert.Equal(t, 100, GetPresetCount("unknown"))
}
