package errors

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "SESSION_EXPIRED"
	Details string `json:"details,omitempty"` // Detailed error information (optional)
}

// Response defines the unified envelope for HTTP error responses produced by
// the error middleware.
type Response struct {
	Success        bool       `json:"success"`
	Code           int        `json:"code"`    // HTTP status code
	Message        string     `json:"message"` // User-friendly message
	Error          *ErrorInfo `json:"error,omitempty"`
	LoginURL       string     `json:"loginUrl,omitempty"`       // Hint for 401 responses: where to re-authenticate
	RequiresReauth bool       `json:"requiresReauth,omitempty"` // True when refresh cannot revive the session
}

// RequiresReauth reports whether the business code means the session is beyond
// refreshing and only a fresh login can help.
func RequiresReauth(code string) bool {
	switch code {
	case ErrSessionInvalid.ErrorCode(),
		ErrSessionRevoked.ErrorCode(),
		ErrSessionExpired.ErrorCode(),
		ErrRefreshDisabled.ErrorCode():
		return true
	default:
		return false
	}
}
