package constant

// Client-facing messages. Internal error text never reaches the response body.
const (
	MsgBadRequest        = "Bad request"
	MsgInvalidRequest    = "Invalid request payload"
	MsgUnauthorized      = "Unauthorized"
	MsgTokenExpired      = "Token expired"
	MsgBadCredentials    = "Invalid email or password"
	MsgNoDrugsFound      = "No drug records found"
	MsgRegistryMalformed = "Drug registry returned an unexpected response"
	MsgRecordNotFound    = "Drug record not found"
	MsgRegistration      = "Can't register this user."
	MsgTooManyRequests   = "Too many requests"
	MsgRequestTimeout    = "Request timed out"
	MsgInternal          = "An unexpected error occurred"
)
