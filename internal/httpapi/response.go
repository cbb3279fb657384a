package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const maxJSONBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

var (
	requestValidator = newRequestValidator()
	errEmptyBody     = errors.New("request body is required")
)

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

func successWithStatus(c echo.Context, code int, data any) error {
	return c.JSON(code, data)
}

func fail(c echo.Context, code int, message string, details any) error {
	resp := errorResponse{Error: message}
	if details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

func failValidation(c echo.Context, fieldErrors map[string]string) error {
	return fail(c, http.StatusBadRequest, "Validation failed", map[string]any{
		"fields": fieldErrors,
	})
}

func failNotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, message, nil)
}

func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: message})
}

func unauthorizedResponse(c echo.Context) error {
	if c == nil {
		return fmt.Errorf("authentication required")
	}
	return fail(c, http.StatusUnauthorized, "Authentication required", nil)
}

// decodeJSONBody reads exactly one JSON value from the request body.
func decodeJSONBody(c echo.Context, dst any) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxJSONBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("request body must contain a single JSON value")
	}
	return nil
}

// bindRequest decodes and validates a request DTO. On failure the 400
// response has already been written and handled is true.
func bindRequest(c echo.Context, dst any) (handled bool, err error) {
	if err := decodeJSONBody(c, dst); err != nil {
		return true, failValidation(c, map[string]string{"body": err.Error()})
	}
	if fieldErrors := validateStruct(dst); len(fieldErrors) > 0 {
		return true, failValidation(c, fieldErrors)
	}
	return false, nil
}

// bindOptionalRequest is bindRequest for endpoints whose body may be absent.
// An empty body, chunked or not, leaves dst at its zero value.
func bindOptionalRequest(c echo.Context, dst any) (handled bool, err error) {
	if err := decodeJSONBody(c, dst); err != nil && !errors.Is(err, errEmptyBody) {
		return true, failValidation(c, map[string]string{"body": err.Error()})
	}
	if fieldErrors := validateStruct(dst); len(fieldErrors) > 0 {
		return true, failValidation(c, fieldErrors)
	}
	return false, nil
}

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct returns field errors keyed by JSON name, or nil.
func validateStruct(value any) map[string]string {
	err := requestValidator.Struct(value)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		out[fe.Field()] = describeFieldError(fe)
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("is out of range (%s %s)", fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
