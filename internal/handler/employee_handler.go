package handler

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/pkg/simpleexcel"
)

// DefaultExportTemplate is the workbook layout used by ExportHandler unless overridden.
//
//go:embed templates/employees_export.yaml
var DefaultExportTemplate string

const (
	msgInvalidID     = "Invalid employee ID"
	msgDeleted       = "Deleted successfully"
	prefixSaveFile   = "Error saving file: "
	prefixCreate     = "Error creating employee: "
	prefixUpdate     = "Error updating employee: "
	prefixDelete     = "Error deleting employee: "
	prefixFetch      = "Error fetching employees: "
	prefixExport     = "Error exporting employees: "
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSectionID  = "employees"
	exportFileLayout = "20060102_150405"
)

type EmployeeHandler struct {
	svc            service.EmployeeService
	exportTemplate string
}

// NewEmployeeHandler validates exportTemplate up front so a broken layout fails at startup.
// An empty template selects DefaultExportTemplate.
func NewEmployeeHandler(svc service.EmployeeService, exportTemplate string) (*EmployeeHandler, error) {
	if exportTemplate == "" {
		exportTemplate = DefaultExportTemplate
	}
	if _, err := simpleexcel.NewDataExporterFromYamlConfig(exportTemplate); err != nil {
		return nil, fmt.Errorf("invalid export template: %w", err)
	}
	return &EmployeeHandler{svc: svc, exportTemplate: exportTemplate}, nil
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	employees, err := h.svc.List(c.Request().Context())
	if err != nil {
		return respondServiceError(c, err, prefixFetch)
	}
	return ResponseSuccess(c, http.StatusOK, employees)
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, msgInvalidID)
	}

	emp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err, prefixFetch)
	}
	return ResponseSuccess(c, http.StatusOK, emp)
}

func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	img, err := imageFromRequest(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, err.Error())
	}

	emp, err := h.svc.Create(c.Request().Context(), inputFromRequest(c), img)
	if err != nil {
		prefix := prefixCreate
		var storage *domain.StorageError
		if errors.As(err, &storage) {
			prefix = prefixSaveFile
		}
		return respondServiceError(c, err, prefix)
	}
	return ResponseSuccess(c, http.StatusOK, emp)
}

func (h *EmployeeHandler) UpdateHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, msgInvalidID)
	}

	img, err := imageFromRequest(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, err.Error())
	}

	emp, err := h.svc.Update(c.Request().Context(), id, inputFromRequest(c), img)
	if err != nil {
		return respondServiceError(c, err, prefixUpdate)
	}
	return ResponseSuccess(c, http.StatusOK, emp)
}

func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, msgInvalidID)
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err, prefixDelete)
	}
	return ResponseSuccess(c, http.StatusOK, msgDeleted)
}

// ExportHandler streams every employee as an xlsx workbook.
func (h *EmployeeHandler) ExportHandler(c echo.Context) error {
	ctx := c.Request().Context()

	employees, err := h.svc.List(ctx)
	if err != nil {
		return respondServiceError(c, err, prefixExport)
	}

	exporter, err := simpleexcel.NewDataExporterFromYamlConfig(h.exportTemplate)
	if err != nil {
		return respondServiceError(c, err, prefixExport)
	}
	exporter.
		RegisterFormatter("yes_no", yesNo).
		BindSectionData(exportSectionID, employees)

	data, err := exporter.ToBytes()
	if err != nil {
		return respondServiceError(c, err, prefixExport)
	}

	filename := fmt.Sprintf("employees_%s.xlsx", time.Now().Format(exportFileLayout))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	logger.InfoLog(ctx, "exported %d employees", len(employees))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func yesNo(v interface{}) interface{} {
	if s, ok := v.(string); ok && s != "" {
		return "Yes"
	}
	return "No"
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func inputFromRequest(c echo.Context) domain.EmployeeInput {
	return domain.EmployeeInput{
		Name:       c.FormValue("name"),
		Email:      c.FormValue("email"),
		Position:   c.FormValue("position"),
		Phone:      c.FormValue("phone"),
		Address:    c.FormValue("address"),
		BirthDate:  c.FormValue("birthDate"),
		Gender:     c.FormValue("gender"),
		Department: c.FormValue("department"),
	}
}

// imageFromRequest returns the optional "image" part. Requests that are not
// multipart, or carry no such part, have no image.
func imageFromRequest(c echo.Context) (*domain.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	return &domain.ImageUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}, nil
}
