package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Container errors
const (
	// ErrCodeDuplicateRegistration indicates a key was registered twice.
	ErrCodeDuplicateRegistration ErrorCode = "DUPLICATE_REGISTRATION"
	// ErrCodeNotRegistered indicates a key has no registration.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeMissingFactory indicates a registration has no factory and
	// no usable default constructor.
	ErrCodeMissingFactory ErrorCode = "MISSING_FACTORY"
	// ErrCodeInvalidRegistration indicates a malformed registration.
	ErrCodeInvalidRegistration ErrorCode = "INVALID_REGISTRATION"
	// ErrCodeTypeMismatch indicates a value is not assignable to the requested type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeContainerFrozen indicates registration after the container was frozen.
	ErrCodeContainerFrozen ErrorCode = "CONTAINER_FROZEN"
	// ErrCodeConstructionFailed indicates an instance could not be built.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeAlreadyInitialized indicates a one-time initialization ran twice.
	ErrCodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"
	// ErrCodeNotInitialized indicates use before initialization.
	ErrCodeNotInitialized ErrorCode = "NOT_INITIALIZED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConstructionFailed: true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
