package errors

// ErrorCode represents a standardized error code used throughout the dashboard API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials ErrorCode = "AUTH_001"
	AuthMissingToken       ErrorCode = "AUTH_002"
	AuthExpiredToken       ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat ErrorCode = "AUTH_004"
	AuthSessionRevoked     ErrorCode = "AUTH_005"
	AuthUpstreamRejected   ErrorCode = "AUTH_006"
)

// Validation error codes (VALIDATION_*), for client-side checks that never
// reach the network
const (
	ValidationGeneral           ErrorCode = "VALIDATION_001"
	ValidationInvalidAmount     ErrorCode = "VALIDATION_002"
	ValidationAmountPrecision   ErrorCode = "VALIDATION_003"
	ValidationAccountNumber     ErrorCode = "VALIDATION_004"
	ValidationInsufficientFunds ErrorCode = "VALIDATION_005"
	ValidationMissingSelection  ErrorCode = "VALIDATION_006"
	ValidationSameAccount       ErrorCode = "VALIDATION_007"
	ValidationUnknownUser       ErrorCode = "VALIDATION_008"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound     ErrorCode = "ACCOUNT_001"
	AccountListFailed   ErrorCode = "ACCOUNT_002"
	AccountCreateFailed ErrorCode = "ACCOUNT_003"
)

// Transfer error codes (TRANSFER_*)
const (
	TransferFailed          ErrorCode = "TRANSFER_001"
	TransferHistoryFailed   ErrorCode = "TRANSFER_002"
	TransferRefreshDeferred ErrorCode = "TRANSFER_003"
)

// Upstream error codes (UPSTREAM_*), covering transient banking-API failures
const (
	UpstreamError       ErrorCode = "UPSTREAM_001"
	UpstreamUnavailable ErrorCode = "UPSTREAM_002"
	UpstreamTimeout     ErrorCode = "UPSTREAM_003"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemStorageError       ErrorCode = "SYSTEM_002"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthInvalidCredentials: "Login failed. Please check your credentials",
	AuthMissingToken:       "Authorization token is required",
	AuthExpiredToken:       "Session has expired. Please sign in again",
	AuthInvalidTokenFormat: "Invalid authorization token format",
	AuthSessionRevoked:     "Session has been signed out",
	AuthUpstreamRejected:   "The banking API rejected the session. Please sign in again",

	// Validation errors
	ValidationGeneral:           "Validation failed",
	ValidationInvalidAmount:     "Amount must be a positive number",
	ValidationAmountPrecision:   "Amount cannot have more than 2 decimal places",
	ValidationAccountNumber:     "Account number must be exactly 16 digits",
	ValidationInsufficientFunds: "Insufficient funds for transfer",
	ValidationMissingSelection:  "No account is selected",
	ValidationSameAccount:       "Source and destination accounts must be different",
	ValidationUnknownUser:       "Selected user is not in the known-users list",

	// Account errors
	AccountNotFound:     "Account not found",
	AccountListFailed:   "Failed to fetch accounts. Please try again later",
	AccountCreateFailed: "Failed to create account. Please try again later",

	// Transfer errors
	TransferFailed:          "Transfer failed. Please try again later",
	TransferHistoryFailed:   "Failed to fetch transfer history. Please try again later",
	TransferRefreshDeferred: "Transfer succeeded but refreshing account data failed",

	// Upstream errors
	UpstreamError:       "The banking API returned an error. Please try again later",
	UpstreamUnavailable: "The banking API is temporarily unavailable",
	UpstreamTimeout:     "The banking API did not respond in time",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemStorageError:       "Session storage error",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemConfigurationError: "System configuration error",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
