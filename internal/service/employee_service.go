package service

import (
	"context"
	"errors"
	"strings"

	"github.com/locvowork/employee_records/internal/blobstore"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
)

// EmployeeService handles business logic for employees and their profile images.
type EmployeeService interface {
	Create(ctx context.Context, in domain.EmployeeInput, img *domain.ImageUpload) (*domain.Employee, error)
	Update(ctx context.Context, id int64, in domain.EmployeeInput, img *domain.ImageUpload) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
}

type employeeService struct {
	repo  domain.EmployeeRepository
	blobs domain.BlobStore
}

// NewEmployeeService creates a new EmployeeService instance
func NewEmployeeService(repo domain.EmployeeRepository, blobs domain.BlobStore) EmployeeService {
	return &employeeService{repo: repo, blobs: blobs}
}

// Create validates the input, stores the optional image and inserts the record.
// Every check that can reject the request runs before the image is written.
func (s *employeeService) Create(ctx context.Context, in domain.EmployeeInput, img *domain.ImageUpload) (*domain.Employee, error) {
	emp, err := buildEmployee(in)
	if err != nil {
		return nil, err
	}
	if err := validateImage(img); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneAvailable(ctx, emp.Phone, 0); err != nil {
		return nil, err
	}

	if !img.Empty() {
		ref, err := s.storeImage(ctx, img)
		if err != nil {
			return nil, err
		}
		emp.ImageURL = &ref
	}

	saved, err := s.repo.Insert(ctx, emp)
	if err != nil {
		if emp.ImageURL != nil {
			logger.WarnLog(ctx, "employee insert failed, upload %s left orphaned", *emp.ImageURL)
		}
		return nil, err
	}

	logger.InfoLog(ctx, "created employee %d", saved.ID)
	return saved, nil
}

// Update replaces every mutable field of the employee. Fields missing from in are cleared;
// the image is kept unless a new one is supplied.
func (s *employeeService) Update(ctx context.Context, id int64, in domain.EmployeeInput, img *domain.ImageUpload) (*domain.Employee, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &domain.NotFoundError{ID: id}
	}

	emp, err := buildEmployee(in)
	if err != nil {
		return nil, err
	}
	emp.ID = id
	emp.ImageURL = current.ImageURL

	if err := validateImage(img); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneAvailable(ctx, emp.Phone, id); err != nil {
		return nil, err
	}

	if !img.Empty() {
		if current.ImageURL != nil {
			s.removeImage(ctx, *current.ImageURL)
		}
		ref, err := s.storeImage(ctx, img)
		if err != nil {
			return nil, err
		}
		emp.ImageURL = &ref
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}

	logger.InfoLog(ctx, "updated employee %d", id)
	return emp, nil
}

// Delete removes the employee and, best effort, its image.
func (s *employeeService) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return &domain.NotFoundError{ID: id}
	}

	if current.ImageURL != nil {
		s.removeImage(ctx, *current.ImageURL)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			// removed concurrently after our lookup
			logger.InfoLog(ctx, "employee %d already deleted", id)
			return nil
		}
		return err
	}

	logger.InfoLog(ctx, "deleted employee %d", id)
	return nil
}

func (s *employeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, &domain.NotFoundError{ID: id}
	}
	return emp, nil
}

func (s *employeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListAll(ctx)
}

func (s *employeeService) ensurePhoneAvailable(ctx context.Context, phone *string, selfID int64) error {
	if phone == nil {
		return nil
	}
	existing, err := s.repo.FindByPhone(ctx, *phone)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return domain.NewPhoneConflictError()
	}
	return nil
}

func (s *employeeService) storeImage(ctx context.Context, img *domain.ImageUpload) (string, error) {
	src, err := img.Open()
	if err != nil {
		return "", &domain.StorageError{Op: "open", Path: img.Filename, Err: err}
	}
	defer src.Close()

	return s.blobs.Store(ctx, img.Filename, src)
}

func (s *employeeService) removeImage(ctx context.Context, ref string) {
	if err := s.blobs.Remove(ctx, ref); err != nil {
		logger.WarnLog(ctx, "could not remove image %s: %v", ref, err)
	}
}

// buildEmployee validates in and assembles a record from it (without ID or image).
func buildEmployee(in domain.EmployeeInput) (*domain.Employee, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewMissingFieldError("name")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domain.NewMissingFieldError("email")
	}

	emp := &domain.Employee{
		Name:       name,
		Email:      email,
		Position:   domain.StringPtr(in.Position),
		Phone:      domain.StringPtr(in.Phone),
		Address:    domain.StringPtr(in.Address),
		Gender:     domain.StringPtr(in.Gender),
		Department: domain.StringPtr(in.Department),
	}

	if raw := strings.TrimSpace(in.BirthDate); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, &domain.ValidationError{
				Kind:    domain.KindInvalidDate,
				Field:   "birthDate",
				Message: domain.MsgInvalidBirthDate,
			}
		}
		emp.BirthDate = &d
	}
	return emp, nil
}

func validateImage(img *domain.ImageUpload) error {
	if img.Empty() {
		return nil
	}
	if !blobstore.IsImageFilename(img.Filename) {
		return &domain.ValidationError{
			Kind:    domain.KindUnsupportedFileType,
			Field:   "image",
			Message: domain.MsgOnlyImages,
		}
	}
	return nil
}
