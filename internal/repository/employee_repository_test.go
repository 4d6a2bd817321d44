package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func newSQLiteRepo(t *testing.T) domain.EmployeeRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "employees.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.DialectSQLite))
	return NewEmployeeRepository(db)
}

func repoFactories() map[string]func(t *testing.T) domain.EmployeeRepository {
	return map[string]func(t *testing.T) domain.EmployeeRepository{
		"memory": func(t *testing.T) domain.EmployeeRepository { return NewMemoryEmployeeRepository() },
		"sqlite": newSQLiteRepo,
	}
}

func TestEmployeeRepository_Contract(t *testing.T) {
	for name, factory := range repoFactories() {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Run("InsertAssignsIDsAndRoundTrips", func(t *testing.T) {
				repo := factory(t)
				ctx := context.Background()
				bd := domain.NewDate(1990, 5, 17)

				first, err := repo.Insert(ctx, &domain.Employee{
					Name:       "Alice",
					Email:      "a@x.com",
					Position:   str("Engineer"),
					Phone:      str("123"),
					BirthDate:  &bd,
					Department: str("R&D"),
					ImageURL:   str("/files/1_a.png"),
				})
				require.NoError(t, err)
				second, err := repo.Insert(ctx, &domain.Employee{Name: "Bob", Email: "b@x.com"})
				require.NoError(t, err)

				assert.NotZero(t, first.ID)
				assert.NotEqual(t, first.ID, second.ID)

				got, err := repo.FindByID(ctx, first.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "Alice", got.Name)
				assert.Equal(t, "Engineer", *got.Position)
				assert.Equal(t, "1990-05-17", got.BirthDate.String())
				assert.Equal(t, "/files/1_a.png", *got.ImageURL)
				assert.Nil(t, got.Address)
				assert.Nil(t, got.Gender)

				bob, err := repo.FindByID(ctx, second.ID)
				require.NoError(t, err)
				assert.Nil(t, bob.Phone)
				assert.Nil(t, bob.BirthDate)
				assert.Nil(t, bob.ImageURL)
			})

			t.Run("FindMissingReturnsNil", func(t *testing.T) {
				repo := factory(t)
				ctx := context.Background()

				got, err := repo.FindByID(ctx, 4242)
				require.NoError(t, err)
				assert.Nil(t, got)

				got, err = repo.FindByPhone(ctx, "000")
				require.NoError(t, err)
				assert.Nil(t, got)
			})

			t.Run("FindByPhone", func(t *testing.T) {
				repo := factory(t)
				ctx := context.Background()

				created, err := repo.Insert(ctx, &domain.Employee{Name: "Alice", Email: "a@x.com", Phone: str("555")})
				require.NoError(t, err)
				_, err = repo.Insert(ctx, &domain.Employee{Name: "Bob", Email: "b@x.com"})
				require.NoError(t, err)

				got, err := repo.FindByPhone(ctx, "555")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, created.ID, got.ID)
			})

			t.Run("DuplicatePhoneRejected", func(t *testing.T) {
				repo := factory(t)
				ctx := context.Background()

				_, err := repo.Insert(ctx, &domain.Employee{Name: "Alice", Email: "a@x.com", Phone: str("555")})
				require.NoError(t, err)
				_, err = repo.Insert(ctx, &domain.Employee{Name: "Bob", Email: "b@x.com", Phone: str("555")})

				var conflict *domain.ConflictError
				require.ErrorAs(t, err, &conflict)

				// absent phones never collide
				_, err = repo.Insert(ctx, &domain.Employee{Name: "C", Email: "c@x.com"})
				require.NoError(t, err)
				_, err = repo.Insert(ctx, &domain.Employee{Name: "D", Email: "d@x.com"})
				require.NoError(t, err)
			})

			t.Run("UpdateReplacesAllFields", func(t *testing.T) {
				repo := factory(t)
				ctx := context.Background()
				bd := domain.NewDate(1990, 1, 1)

				created, err := repo.Insert(ctx, &domain.Employee{
					Name: "Alice", Email: "a@x.com", Phone: str("1"), BirthDate: &bd, Gender: str("F"),
				})
				require.NoError(t, err)

				require.NoError(t, repo.Update(ctx, &domain.Employee{ID: created.ID, Name: "Alicia", Email: "al@x.com"}))

				got, err := repo.FindByID(ctx, created.ID)
				require.NoError(t, err)
				assert.Equal(t, "Alicia", got.Name)
				assert.Nil(t, got.Phone)
				assert.Nil(t, got.BirthDate)
				assert.Nil(t, got.Gender)
			})

			t.Run("UpdateUnknownIsNotFound", func(t *testing.T) {
				repo := factory(t)
				err := repo.Update(context.Background(), &domain.Employee{ID: 99, Name: "x", Email: "y"})

				var notFound *domain.NotFoundError
				require.ErrorAs(t, err, &notFound)
			})

			t.Run("DeleteAndList", func(t *testing.T) {
				repo := factory(t)
				ctx := context.Background()

				a, err := repo.Insert(ctx, &domain.Employee{Name: "A", Email: "a@x.com"})
				require.NoError(t, err)
				b, err := repo.Insert(ctx, &domain.Employee{Name: "B", Email: "b@x.com"})
				require.NoError(t, err)
				c, err := repo.Insert(ctx, &domain.Employee{Name: "C", Email: "c@x.com"})
				require.NoError(t, err)

				require.NoError(t, repo.Delete(ctx, b.ID))

				var notFound *domain.NotFoundError
				require.ErrorAs(t, repo.Delete(ctx, b.ID), &notFound)

				all, err := repo.ListAll(ctx)
				require.NoError(t, err)
				require.Len(t, all, 2)
				assert.Equal(t, a.ID, all[0].ID)
				assert.Equal(t, c.ID, all[1].ID)
			})

			t.Run("ListEmpty", func(t *testing.T) {
				repo := factory(t)
				all, err := repo.ListAll(context.Background())
				require.NoError(t, err)
				assert.Empty(t, all)
			})
		})
	}
}

func TestMemoryEmployeeRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryEmployeeRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, &domain.Employee{Name: "A", Email: "a@x.com", Phone: str("1")})
	require.NoError(t, err)
	*created.Phone = "mutated"

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", *got.Phone)
}

func TestDatastoreEmployeeRepository(t *testing.T) {
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("DATASTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := database.NewDatastoreClient(ctx, "employee-records-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	repo := NewDatastoreEmployeeRepository(client)
	phone := "ds-" + t.Name()

	created, err := repo.Insert(ctx, &domain.Employee{Name: "Alice", Email: "a@x.com", Phone: &phone})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, created.ID) })

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)

	created.Name = "Alicia"
	require.NoError(t, repo.Update(ctx, created))

	var notFound *domain.NotFoundError
	require.ErrorAs(t, repo.Update(ctx, &domain.Employee{ID: created.ID + 1_000_000, Name: "x"}), &notFound)
}
