package response

import "time"

// ResponseData is the envelope for every successful response.
type ResponseData struct {
	Ec    int    `json:"ec"`
	Msg   string `json:"msg,omitempty"`
	Total *int64 `json:"total,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// ErrorResponse is the uniform error envelope produced at the request boundary.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Ec        int       `json:"ec"`
	Status    string    `json:"status"`
	Errors    []string  `json:"errors"`
}
