package services

import (
	"fmt"

	"github.com/abrezinsky/heatroll/internal/errors"
	"github.com/abrezinsky/heatroll/internal/repository"
)

// Service errors
var (
	ErrNoTablesSpecified = &ServiceError{Message: "no tables specified"}
	ErrCatalogSeeded     = &ServiceError{Message: "catalog already has games"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}

// notFound translates repository.ErrNotFound into a NotFound app error.
// Other errors pass through unchanged.
func notFound(err error, format string, args ...interface{}) error {
	if err == repository.ErrNotFound {
		return errors.NotFoundf(format, args...)
	}
	return err
}
