package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	CodeSuccess = "00"
	CodeError   = "01"
)

// APIResponse is the envelope every endpoint answers with. Data is the payload
// on success and a human readable message on error.
type APIResponse struct {
	Status string      `json:"status"`
	Code   string      `json:"code"`
	Data   interface{} `json:"data"`
}

func ResponseSuccess(c echo.Context, httpStatus int, data interface{}) error {
	return c.JSON(httpStatus, APIResponse{Status: StatusSuccess, Code: CodeSuccess, Data: data})
}

func ResponseError(c echo.Context, httpStatus int, message string) error {
	return c.JSON(httpStatus, APIResponse{Status: StatusError, Code: CodeError, Data: message})
}

// respondServiceError maps a service error onto its HTTP status. failurePrefix
// is prepended to the message of storage and unexpected failures.
func respondServiceError(c echo.Context, err error, failurePrefix string) error {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		notFound   *domain.NotFoundError
		storage    *domain.StorageError
	)

	switch {
	case errors.As(err, &validation):
		return ResponseError(c, http.StatusBadRequest, validation.Message)
	case errors.As(err, &conflict):
		return ResponseError(c, http.StatusBadRequest, conflict.Message)
	case errors.As(err, &notFound):
		return ResponseError(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &storage):
		logger.ErrorLog(c.Request().Context(), "storage failure: %v", err)
		return ResponseError(c, http.StatusInternalServerError, failurePrefix+storage.Error())
	default:
		logger.ErrorLog(c.Request().Context(), "request failed: %v", err)
		return ResponseError(c, http.StatusInternalServerError, failurePrefix+err.Error())
	}
}

// HTTPErrorHandler renders errors raised outside the handlers (routing, body limit,
// recovered panics) with the same envelope as every other response.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else {
		logger.ErrorLog(c.Request().Context(), "unhandled error: %v", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = ResponseError(c, code, message)
	}
	if writeErr != nil {
		logger.ErrorLog(c.Request().Context(), "failed to write error response: %v", writeErr)
	}
}

// RateLimitExceeded is the plain net/http handler answering requests over the rate limit.
func RateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(http.StatusTooManyRequests)
	if err := json.NewEncoder(w).Encode(APIResponse{
		Status: StatusError,
		Code:   CodeError,
		Data:   http.StatusText(http.StatusTooManyRequests),
	}); err != nil {
		logger.ErrorLog(r.Context(), "failed to write rate limit response: %v", err)
	}
}
