package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Local gate errors, raised before any network activity.
const (
	// ErrCodeMissingClientCode indicates the tenant client code is not configured.
	ErrCodeMissingClientCode ErrorCode = "MISSING_CLIENT_CODE"
	// ErrCodeNotOptedIn indicates the privacy status does not allow requests.
	ErrCodeNotOptedIn ErrorCode = "NOT_OPTED_IN"
	// ErrCodePreviewMode indicates requests are blocked while preview is active.
	ErrCodePreviewMode ErrorCode = "PREVIEW_MODE"
	// ErrCodeEmptyRequest indicates there was nothing to send.
	ErrCodeEmptyRequest ErrorCode = "EMPTY_REQUEST"
)

// Round-trip errors.
const (
	// ErrCodeParseFailure indicates the response body could not be parsed.
	ErrCodeParseFailure ErrorCode = "PARSE_FAILURE"
	// ErrCodeServerError indicates the endpoint reported a logical error.
	ErrCodeServerError ErrorCode = "SERVER_ERROR"
	// ErrCodeTimeout indicates the request timed out locally.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnectionFailed indicates a network failure other than a timeout.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected local failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Category groups codes into the classes callers usually branch on.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryPrivacy       Category = "privacy"
	CategoryPreview       Category = "preview"
	CategoryEmpty         Category = "empty"
	CategoryParse         Category = "parse"
	CategoryServer        Category = "server"
	CategoryTransport     Category = "transport"
	CategoryLocal         Category = "local"
)

var categories = map[ErrorCode]Category{
	ErrCodeMissingClientCode: CategoryConfiguration,
	ErrCodeNotOptedIn:        CategoryPrivacy,
	ErrCodePreviewMode:       CategoryPreview,
	ErrCodeEmptyRequest:      CategoryEmpty,
	ErrCodeParseFailure:      CategoryParse,
	ErrCodeServerError:       CategoryServer,
	ErrCodeTimeout:           CategoryTransport,
	ErrCodeConnectionFailed:  CategoryTransport,
	ErrCodeInvalidInput:      CategoryLocal,
	ErrCodeInternal:          CategoryLocal,
}

// CategoryOf returns the category of a code, CategoryLocal for unknown codes.
func CategoryOf(code ErrorCode) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryLocal
}
