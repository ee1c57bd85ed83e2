package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"podbrief/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest binds a JSON body and checks both struct tags and domain rules.
func ValidateRequest(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindingError(err, "request", "invalid JSON format")
	}
	return validateDomain(req)
}

// ValidateQuery binds and validates query parameters.
func ValidateQuery(c *gin.Context, req any) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindingError(err, "query", "invalid query parameters")
	}
	return validateDomain(req)
}

// ValidateForm binds multipart or urlencoded form fields.
func ValidateForm(c *gin.Context, req any) error {
	if err := c.ShouldBind(req); err != nil {
		return bindingError(err, "form", "invalid form fields")
	}
	return validateDomain(req)
}

func bindingError(err error, scope, fallback string) error {
	fields := make(map[string]string)
	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		fields[scope] = fallback
		return errors.NewValidationError("Validation failed", fields)
	}
	for _, fe := range validationErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "url", "http_url":
			fields[field] = "must be a valid URL"
		case "uuid", "uuid4":
			fields[field] = "must be a UUID"
		case "min", "gte", "gt":
			fields[field] = "is too small"
		case "max", "lte", "lt":
			fields[field] = "is too large"
		case "oneof":
			fields[field] = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			fields[field] = "is invalid"
		}
	}
	return errors.NewValidationError("Validation failed", fields)
}

func validateDomain(req any) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}
