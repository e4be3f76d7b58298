package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur around an audit.
var (
	// ErrCacheCorrupted indicates that cached data is corrupted or invalid.
	ErrCacheCorrupted = errors.New("cache corrupted")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrUnsupportedFormat indicates a dataset or report format the
	// infrastructure cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedDataset indicates a dataset source that could not be decoded.
	ErrMalformedDataset = errors.New("malformed dataset")
)

// CacheError represents an error from cache operations.
// It includes the key and operation that failed.
type CacheError struct {
	// Key is the cache key that was involved in the failed operation.
	Key string

	// Operation is the name of the cache operation that failed.
	Operation string

	// Err is the underlying error that caused the cache operation to fail.
	Err error
}

// Error implements the error interface for CacheError.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *CacheError) Unwrap() error { return e.Err }

// NewCacheError creates a new CacheError with the given details.
func NewCacheError(key, operation string, err error) *CacheError {
	return &CacheError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}

// DatasetError represents a failure to read or decode a dataset source.
type DatasetError struct {
	// Path is the location the dataset was read from.
	Path string

	// Line is the 1-based record number where decoding failed, or 0 when
	// the failure is not tied to a record.
	Line int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for DatasetError.
func (e *DatasetError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("dataset error: path=%s, line=%d, err=%v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("dataset error: path=%s, err=%v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DatasetError) Unwrap() error { return e.Err }

// NewDatasetError creates a new DatasetError with the given details.
func NewDatasetError(path string, line int, err error) *DatasetError {
	return &DatasetError{
		Path: path,
		Line: line,
		Err:  err,
	}
}
