package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/constant"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// rejects whitespace-only strings, which "required" lets through
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	// report the name the client used, not the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

func isEmptyInterface[T any]() bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t == reflect.TypeOf((*any)(nil)).Elem()
}

// Struct validates s and converts violations into an *apperror.ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewValidationError(constant.MsgInvalidRequest)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return apperror.NewValidationError(messages...)
}

func fieldMessage(fe validator.FieldError) string {
	return fmt.Sprintf("Field '%s' %s (rejected value: %v)", fe.Field(), ruleMessage(fe), fe.Value())
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

func abort(c *gin.Context, err error) {
	zap.L().Debug("Request validation failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	code, body := apperror.ToResponse(err)
	c.AbortWithStatusJSON(code, body)
}

// bindError converts a binding failure (bad JSON, non-numeric page) into a
// validation error.
func bindError(err error) error {
	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return apperror.NewValidationError(constant.MsgInvalidRequest)
}

// Validate binds and validates the request body (B), URI params (P), and
// query (Q). Pass `any` for a part that should be skipped. Validated values
// are stored on the gin context and read back with Body, Params and Query.
func Validate[B any, P any, Q any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Body ---
		if !isEmptyInterface[B]() {
			var body B

			rawData, err := io.ReadAll(c.Request.Body)
			if err != nil {
				abort(c, bindError(err))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewBuffer(rawData))

			if err := c.ShouldBindJSON(&body); err != nil {
				abort(c, bindError(err))
				return
			}
			if err := Struct(body); err != nil {
				abort(c, err)
				return
			}

			c.Request.Body = io.NopCloser(bytes.NewBuffer(rawData))
			c.Set(constant.ValidatedBody, body)
		}

		// --- Params ---
		if !isEmptyInterface[P]() {
			var params P
			originalParams := c.Params

			if err := c.ShouldBindUri(&params); err != nil {
				abort(c, bindError(err))
				return
			}
			if err := Struct(params); err != nil {
				abort(c, err)
				return
			}

			c.Params = originalParams
			c.Set(constant.ValidatedParams, params)
		}

		// --- Query ---
		if !isEmptyInterface[Q]() {
			var query Q
			originalValues, _ := url.ParseQuery(c.Request.URL.RawQuery)

			if err := c.ShouldBindQuery(&query); err != nil {
				abort(c, bindError(err))
				return
			}
			if err := Struct(query); err != nil {
				abort(c, err)
				return
			}

			c.Request.URL.RawQuery = originalValues.Encode()
			c.Set(constant.ValidatedQuery, query)
		}

		c.Next()
	}
}

// Body returns the body stored by Validate.
func Body[T any](c *gin.Context) T {
	return get[T](c, constant.ValidatedBody)
}

// Params returns the URI params stored by Validate.
func Params[T any](c *gin.Context) T {
	return get[T](c, constant.ValidatedParams)
}

// Query returns the query stored by Validate.
func Query[T any](c *gin.Context) T {
	return get[T](c, constant.ValidatedQuery)
}

func get[T any](c *gin.Context, key string) T {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		return zero
	}
	return t
}
