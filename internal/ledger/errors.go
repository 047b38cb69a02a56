package ledger

import (
	"errors"
	"fmt"
	"strings"

	"press-inventory/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInconsistent = errors.New("stock snapshot inconsistent with ledger")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to a nonexistent record.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Mismatch is one SKU whose snapshot differs from the ledger.
type Mismatch struct {
	Key      models.SKU      `json:"key"`
	Snapshot decimal.Decimal `json:"snapshot"`
	Ledger   decimal.Decimal `json:"ledger"`
}

// ConsistencyError is returned by Verify. The only recovery is RecomputeAll.
type ConsistencyError struct {
	Mismatches []Mismatch
}

func (e *ConsistencyError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("%s snapshot=%s ledger=%s", m.Key, m.Snapshot, m.Ledger))
	}
	return fmt.Sprintf("%d stock entries diverge from ledger: %s", len(e.Mismatches), strings.Join(parts, "; "))
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrInconsistent }
