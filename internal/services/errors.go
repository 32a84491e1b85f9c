// Package services resolves the dataset view of a request and runs the
// analytics engines over it.
package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics/forecast"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
)

// Error codes returned to clients
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidFilter     = "INVALID_FILTER"
	CodeNoData            = "NO_DATA"
	CodeCancelled         = "REQUEST_CANCELLED"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeReloadFailed      = "RELOAD_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// toServiceError classifies an engine or dataset error
func toServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case errors.As(err, &validationErrs):
		fields := make(map[string]interface{}, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return NewServiceErrorWithDetails(CodeInvalidRequest, "request validation failed", fields)
	case errors.Is(err, dataset.ErrInvalidFilter):
		return NewServiceError(CodeInvalidFilter, err.Error())
	case errors.Is(err, forecast.ErrNoData), errors.Is(err, dataset.ErrEmptyDataset):
		return NewServiceError(CodeNoData, err.Error())
	case errors.Is(err, forecast.ErrInvalidHorizon):
		return NewServiceError(CodeInvalidRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewServiceError(CodeCancelled, err.Error())
	default:
		return NewServiceError(CodeInternal, err.Error())
	}
}

func invalidRequest(err error) *ServiceError {
	return NewServiceError(CodeInvalidRequest, err.Error())
}
