package domain

import "fmt"

// ValidationKind tells apart the reasons a request was rejected.
type ValidationKind string

const (
	KindMissingField        ValidationKind = "missing_field"
	KindInvalidDate         ValidationKind = "invalid_date"
	KindUnsupportedFileType ValidationKind = "unsupported_file_type"
)

const (
	MsgInvalidBirthDate = "Invalid birthDate format, expected yyyy-MM-dd"
	MsgOnlyImages       = "Only image files (jpg, jpeg, png) are allowed."
	MsgPhoneExists      = "Phone number already exists"
	MsgNotFound         = "Employee not found"
)

// ValidationError is returned for bad input. Nothing has been mutated.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewMissingFieldError reports a required field that is absent or blank.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Kind:    KindMissingField,
		Field:   field,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// ConflictError is returned when a unique attribute is already taken.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewPhoneConflictError reports a phone number owned by another employee.
func NewPhoneConflictError() *ConflictError {
	return &ConflictError{Field: "phone", Message: MsgPhoneExists}
}

// NotFoundError is returned when the addressed employee does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return MsgNotFound
}

// StorageError wraps file system failures of the blob store.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
