package dto

import "net/http"

// Envelope error codes, ERR_<CATEGORY>[_<DETAIL>].
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeForbidden covers edits of a Paid invoice
	ErrCodeForbidden = "ERR_FORBIDDEN"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"

	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
	// ErrCodeSequenceBusy means no invoice number could be allocated in time
	ErrCodeSequenceBusy = "ERR_SEQUENCE_BUSY"
	ErrCodeRenderFailed = "ERR_RENDER_FAILED"
)

type codeInfo struct {
	status int
	// domain is the shared.DomainError code that maps onto this one, if any
	domain string
}

var codeTable = map[string]codeInfo{
	ErrCodeInternal: {http.StatusInternalServerError, "INTERNAL_ERROR"},

	ErrCodeValidation:   {http.StatusBadRequest, "VALIDATION_ERROR"},
	ErrCodeBadRequest:   {http.StatusBadRequest, "BAD_REQUEST"},
	ErrCodeInvalidInput: {http.StatusBadRequest, "INVALID_INPUT"},
	ErrCodeInvalidJSON:  {http.StatusBadRequest, ""},

	ErrCodeUnauthorized: {http.StatusUnauthorized, "UNAUTHORIZED"},
	ErrCodeTokenExpired: {http.StatusUnauthorized, ""},
	ErrCodeTokenInvalid: {http.StatusUnauthorized, ""},
	ErrCodeForbidden:    {http.StatusForbidden, "FORBIDDEN"},

	ErrCodeNotFound:            {http.StatusNotFound, "NOT_FOUND"},
	ErrCodeAlreadyExists:       {http.StatusConflict, "ALREADY_EXISTS"},
	ErrCodeConflict:            {http.StatusConflict, ""},
	ErrCodeConcurrencyConflict: {http.StatusConflict, "CONCURRENCY_CONFLICT"},
	ErrCodeInvalidState:        {http.StatusConflict, "INVALID_STATE"},

	ErrCodeTooManyRequests: {http.StatusTooManyRequests, ""},
	ErrCodeSequenceBusy:    {http.StatusServiceUnavailable, "SEQUENCE_BUSY"},
	ErrCodeRenderFailed:    {http.StatusInternalServerError, ""},
}

var fromDomain = func() map[string]string {
	m := make(map[string]string, len(codeTable))
	for code, info := range codeTable {
		if info.domain != "" {
			m[info.domain] = code
		}
	}
	return m
}()

// GetHTTPStatus returns the status for an envelope code; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if info, ok := codeTable[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode lifts a domain error code into the envelope format.
// Envelope codes and unrecognised codes pass through.
func NormalizeErrorCode(code string) string {
	if c, ok := fromDomain[code]; ok {
		return c
	}
	return code
}
