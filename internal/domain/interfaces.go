package domain

import (
	"context"
	"io"
)

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	// Insert stores a new employee and returns it carrying its assigned ID.
	Insert(ctx context.Context, e *Employee) (*Employee, error)
	// FindByID returns (nil, nil) when no employee has the id.
	FindByID(ctx context.Context, id int64) (*Employee, error)
	// FindByPhone returns (nil, nil) when no employee has the phone.
	FindByPhone(ctx context.Context, phone string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]Employee, error)
}

// BlobStore defines the interface for profile image files
type BlobStore interface {
	// Store writes the content and returns its reference path (/files/<name>).
	Store(ctx context.Context, originalFilename string, r io.Reader) (string, error)
	// Remove deletes the referenced file. Missing files are not an error.
	Remove(ctx context.Context, storedPath string) error
}
