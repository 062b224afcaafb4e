package apperror

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/duccv/medrecords-api/internal/constant"
	"github.com/duccv/medrecords-api/internal/model/response"
)

// StatusOf classifies err into an HTTP status code.
func StatusOf(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrRegistrationConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRegistryLookupFailed),
		errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMalformedRegistryResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messagesOf returns the client-facing messages for err.
func messagesOf(err error) []string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Messages
	case errors.Is(err, ErrRegistrationConflict):
		return []string{constant.MsgRegistration}
	case errors.Is(err, ErrExpiredToken):
		return []string{constant.MsgTokenExpired}
	case errors.Is(err, ErrInvalidToken):
		return []string{constant.MsgUnauthorized}
	case errors.Is(err, ErrBadCredentials):
		return []string{constant.MsgBadCredentials}
	case errors.Is(err, ErrRegistryLookupFailed):
		return []string{constant.MsgNoDrugsFound}
	case errors.Is(err, ErrRecordNotFound):
		var nf *NotFoundError
		if errors.As(err, &nf) && nf.ApplicationNumber != "" {
			return []string{constant.MsgRecordNotFound + ": " + nf.ApplicationNumber}
		}
		return []string{constant.MsgRecordNotFound}
	case errors.Is(err, ErrMalformedRegistryResponse):
		return []string{constant.MsgRegistryMalformed}
	default:
		return []string{constant.MsgInternal}
	}
}

// StatusName renders a status code the way the envelope reports it, e.g. NOT_FOUND.
func StatusName(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// NewErrorResponse builds the envelope for an explicit status and message list.
func NewErrorResponse(code int, messages ...string) response.ErrorResponse {
	if messages == nil {
		messages = []string{}
	}
	return response.ErrorResponse{
		Timestamp: time.Now().UTC(),
		Ec:        code,
		Status:    StatusName(code),
		Errors:    messages,
	}
}

// ToResponse maps err to its HTTP status and the uniform error envelope.
func ToResponse(err error) (int, response.ErrorResponse) {
	code := StatusOf(err)
	return code, NewErrorResponse(code, messagesOf(err)...)
}
