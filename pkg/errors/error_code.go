package errors

// ErrorCode identifies the category of a failure at an I/O or configuration boundary.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidTimeframe     ErrorCode = 102
	ErrCodeInvalidVersion       ErrorCode = 105
	ErrCodeInvalidPeriod        ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeCalendarLoadFailed    ErrorCode = 203

	// Output errors (400-499)
	ErrCodeWriteFailed  ErrorCode = 400
	ErrCodeExportFailed ErrorCode = 401
)
