package constants

// Upstream Provider Error Codes
// These constants define specific error scenarios for external flight-data providers

const (
	ErrCodeInvalidAPIKey        = "INVALID_API_KEY"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeInvalidDataFormat    = "INVALID_DATA_FORMAT"
	ErrCodeNotFound             = "RESOURCE_NOT_FOUND"
)

// Error Messages
// Human-readable messages corresponding to error codes

var UpstreamErrorMessages = map[string]string{
	ErrCodeInvalidAPIKey:        "The upstream API key is invalid or has been revoked",
	ErrCodeRateLimited:          "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:         "Unable to reach the upstream provider",
	ErrCodeAuthenticationFailed: "Authentication with the upstream provider failed",
	ErrCodeInvalidDataFormat:    "The upstream payload format is invalid",
	ErrCodeNotFound:             "The requested upstream resource was not found",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, ok := UpstreamErrorMessages[code]; ok {
		return msg
	}
	return "An unexpected upstream error occurred"
}
