package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
)

// EmployeeWriter is the subset of the employee service the seeder drives.
// Seeding goes through the service so validation and phone uniqueness apply.
type EmployeeWriter interface {
	Create(ctx context.Context, in domain.EmployeeInput, img *domain.ImageUpload) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Employee, error)
}

type DataSeeder struct {
	svc EmployeeWriter
	rnd *rand.Rand
}

func NewDataSeeder(svc EmployeeWriter) *DataSeeder {
	return &DataSeeder{svc: svc, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var (
	firstNames  = []string{"Alice", "Bob", "Carol", "David", "Emma", "Frank", "Grace", "Henry", "Ivy", "Jack"}
	lastNames   = []string{"Nguyen", "Smith", "Tran", "Johnson", "Le", "Brown", "Pham", "Garcia", "Vo", "Miller"}
	positions   = []string{"Engineer", "Senior Engineer", "Manager", "Analyst", "Designer", "Accountant"}
	departments = []string{"R&D", "Sales", "Finance", "Operations", "Marketing", "HR"}
	cities      = []string{"Hanoi", "Ho Chi Minh City", "Tokyo", "Seoul", "Berlin", "New York"}
	genders     = []string{"Male", "Female", "Other"}
)

// SeedData creates count employees with random attributes and unique phones.
func (ds *DataSeeder) SeedData(ctx context.Context, count int) (int, error) {
	start := time.Now()
	logger.InfoLog(ctx, "seeding %d employees", count)

	base := time.Now().UnixNano() % 1_000_000
	created := 0
	for i := 0; i < count; i++ {
		first := firstNames[ds.rnd.Intn(len(firstNames))]
		last := lastNames[ds.rnd.Intn(len(lastNames))]
		birth := time.Date(1960+ds.rnd.Intn(45), time.Month(1+ds.rnd.Intn(12)), 1+ds.rnd.Intn(28), 0, 0, 0, 0, time.UTC)

		in := domain.EmployeeInput{
			Name:       first + " " + last,
			Email:      fmt.Sprintf("%s.%s.%d@example.com", first, last, i),
			Position:   positions[ds.rnd.Intn(len(positions))],
			Phone:      fmt.Sprintf("09%06d%03d", base, i),
			Address:    fmt.Sprintf("%d Main Street, %s", 1+ds.rnd.Intn(999), cities[ds.rnd.Intn(len(cities))]),
			BirthDate:  birth.Format(domain.DateLayout),
			Gender:     genders[ds.rnd.Intn(len(genders))],
			Department: departments[ds.rnd.Intn(len(departments))],
		}
		if _, err := ds.svc.Create(ctx, in, nil); err != nil {
			return created, fmt.Errorf("failed to seed employee %d: %w", i, err)
		}
		created++
	}

	logger.InfoLog(ctx, "seeded %d employees in %v", created, time.Since(start))
	return created, nil
}

// ClearData deletes every employee, and with it every referenced image.
func (ds *DataSeeder) ClearData(ctx context.Context) (int, error) {
	employees, err := ds.svc.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}

	removed := 0
	for _, e := range employees {
		if err := ds.svc.Delete(ctx, e.ID); err != nil {
			return removed, fmt.Errorf("failed to delete employee %d: %w", e.ID, err)
		}
		removed++
	}

	logger.InfoLog(ctx, "cleared %d employees", removed)
	return removed, nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
)

// GetPresetCount returns the number of employees a preset seeds.
func GetPresetCount(preset SeedPreset) int {
	switch preset {
	case PresetSmall:
		return 10
	case PresetLarge:
		return 1000
	default:
		return 100
	}
}
