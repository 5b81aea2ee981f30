package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"vidasmart/inventory-service/internal/app/inventory/repository"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrValidation                 = errors.New("validation failed")
	ErrInsufficientStock          = errors.New("insufficient stock")
	ErrInsufficientAllocation     = errors.New("insufficient shared allocation")
	ErrAllocationExceedsAvailable = errors.New("allocation exceeds available stock")
	ErrConcurrencyConflict        = errors.New("concurrent update, retry the request")

	ErrProductNotFound    = errors.New("product not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCurrencyNotFound   = errors.New("currency not found")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrAllocationNotFound = errors.New("shared inventory item not found")

	ErrCategoryCycle = errors.New("category cannot be its own ancestor")
	ErrCategoryInUse = errors.New("category has products or subcategories")
	ErrProviderInUse = errors.New("provider is referenced by investments")
	ErrCurrencyInUse = errors.New("currency is used by products")
	ErrDuplicate     = errors.New("resource already exists")
	ErrInvalidLogin  = errors.New("invalid email or password")
)

// ValidationError - отказ до любых изменений; ключи Fields совпадают с json полями запроса
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Is позволяет проверять errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// fieldErrors копит ошибки по полям; nil, если ошибок нет
type fieldErrors map[string]string

func (f fieldErrors) add(field, reason string) {
	if _, exists := f[field]; !exists {
		f[field] = reason
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// translate переводит ошибки репозитория в ошибки сервиса.
// Ошибки сервиса и неизвестные ошибки оборачиваются с контекстом op.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrProviderNotFound):
		return ErrProviderNotFound
	case errors.Is(err, repository.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repository.ErrCurrencyNotFound):
		return ErrCurrencyNotFound
	case errors.Is(err, repository.ErrSaleNotFound):
		return ErrSaleNotFound
	case errors.Is(err, repository.ErrSharedItemNotFound):
		return ErrAllocationNotFound
	case errors.Is(err, repository.ErrCategoryHasLinks):
		return ErrCategoryInUse
	case errors.Is(err, repository.ErrCategoryCycle):
		return ErrCategoryCycle
	case errors.Is(err, repository.ErrParentNotFound):
		return newValidationError("parent_id", "category does not exist")
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicate
	case errors.Is(err, repository.ErrSerialization):
		return ErrConcurrencyConflict
	case isServiceError(err):
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isServiceError(err error) bool {
	for _, known := range []error{
		ErrValidation, ErrInsufficientStock, ErrInsufficientAllocation, ErrAllocationExceedsAvailable,
		ErrConcurrencyConflict, ErrProductNotFound, ErrUserNotFound, ErrProviderNotFound,
		ErrCategoryNotFound, ErrCurrencyNotFound, ErrSaleNotFound, ErrAllocationNotFound,
		ErrCategoryCycle, ErrCategoryInUse, ErrProviderInUse, ErrCurrencyInUse, ErrDuplicate,
		ErrInvalidLogin,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
