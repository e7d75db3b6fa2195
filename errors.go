package coinfolio

import "fmt"

// ValidationError reports a missing or malformed field on a transaction or
// portfolio. Values are never silently coerced: the caller gets the field
// name and the reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to a transaction or portfolio id that
// does not exist in the ledger.
type NotFoundError struct {
	Kind string // "transaction" or "portfolio"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// InvalidOperationError reports an operation that is structurally valid but
// forbidden by a ledger invariant, such as deleting the default portfolio.
type InvalidOperationError struct {
	Op     string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ImportRowError is a per-row import failure. Rows errors are collected into
// the import result rather than aborting the batch.
type ImportRowError struct {
	Row    int // 1-based position in the submitted batch
	Reason string
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// PriceUnavailableError is returned by a MarketPriceProvider when it has no
// price for an asset. The valuation layer turns it into a per-asset "no
// price" marker instead of failing the whole computation.
type PriceUnavailableError struct {
	Asset string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no price available for %s", e.Asset)
}

// StorageCorruptionError is fatal: the persisted ledger payload is not the
// expected shape. The engine refuses to operate on it rather than guess at
// a recovery.
type StorageCorruptionError struct {
	Document string
	Err      error
}

func (e *StorageCorruptionError) Error() string {
	return fmt.Sprintf("corrupt ledger document %q: %v", e.Document, e.Err)
}

func (e *StorageCorruptionError) Unwrap() error { return e.Err }
