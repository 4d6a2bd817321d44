package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// Employee represents the employees table
type Employee struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Email      string  `json:"email" db:"email"`
	Position   *string `json:"position" db:"position"`
	Phone      *string `json:"phone" db:"phone"`
	Address    *string `json:"address" db:"address"`
	BirthDate  *Date   `json:"birthDate" db:"birth_date"`
	Gender     *string `json:"gender" db:"gender"`
	Department *string `json:"department" db:"department"`
	ImageURL   *string `json:"imageUrl" db:"image_url"`
}

// Clone returns a deep copy so callers never share pointer fields with a store.
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	c.Position = cloneString(e.Position)
	c.Phone = cloneString(e.Phone)
	c.Address = cloneString(e.Address)
	c.Gender = cloneString(e.Gender)
	c.Department = cloneString(e.Department)
	c.ImageURL = cloneString(e.ImageURL)
	if e.BirthDate != nil {
		d := *e.BirthDate
		c.BirthDate = &d
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns nil for blank input, otherwise a pointer to the trimmed value.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// ParseDate parses a yyyy-MM-dd string. Out-of-range days or months are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE columns (postgres returns time.Time,
// sqlite may return time.Time, string or []byte).
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) < len(DateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	parsed, err := ParseDate(s[:len(DateLayout)])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EmployeeInput carries the caller-supplied mutable fields of an Employee.
// Every update replaces all of them; omitted optional fields are cleared.
type EmployeeInput struct {
	Name       string
	Email      string
	Position   string
	Phone      string
	Address    string
	BirthDate  string
	Gender     string
	Department string
}

// ImageUpload is an uploaded profile image as received by the API layer.
type ImageUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Empty reports whether the upload carries no content.
func (u *ImageUpload) Empty() bool {
	return u == nil || u.Size <= 0 || u.Open == nil
}
