package constant

// Constant package provides constants used throughout the application.

type ctxKey string

const (
	CorrelationIDKey ctxKey = "CorrelationID"
	IdentityKey      ctxKey = "Identity"
	AuthFailureKey   ctxKey = "AuthFailure"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "
)

// gin context keys set by the validation middleware
const (
	ValidatedBody   = "validatedBody"
	ValidatedParams = "validatedParams"
	ValidatedQuery  = "validatedQuery"
	RequestIDKey    = "requestId"
)
