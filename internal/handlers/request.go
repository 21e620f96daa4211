package handlers

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// requestBinder decodes enveloped JSON bodies ({"article": {...}}) and validates them.
type requestBinder struct {
	validate *validator.Validate
}

func newRequestBinder() *requestBinder {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestBinder{validate: v}
}

// bind fills dest from the body's key object. Failures come back as *validationFailure.
func (b *requestBinder) bind(c *fiber.Ctx, key string, dest interface{}) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &envelope); err != nil {
		return newValidationFailure("body", "must be a JSON object")
	}
	raw, ok := envelope[key]
	if !ok || string(raw) == "null" {
		return newValidationFailure(key, "can't be blank")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return newValidationFailure(key, fmt.Sprintf("is invalid: %v", err))
	}
	return b.check(dest)
}

func (b *requestBinder) check(dest interface{}) error {
	err := b.validate.Struct(dest)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	failure := &validationFailure{Fields: make(map[string][]string)}
	for _, e := range fieldErrors {
		failure.Fields[e.Field()] = append(failure.Fields[e.Field()], validationMessage(e))
	}
	return failure
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "can't be blank"
	case "email":
		return "is invalid"
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", e.Param())
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", e.Param())
	case "excludesall":
		return "must not contain ','"
	default:
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}

// parsePagination reads limit and offset only when present in the query string.
func parsePagination(c *fiber.Ctx) (services.Pagination, error) {
	var page services.Pagination
	for _, p := range []struct {
		key  string
		dest **int
	}{{"limit", &page.Limit}, {"offset", &page.Offset}} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, newValidationFailure(p.key, "must be a non-negative integer")
		}
		*p.dest = &n
	}
	return page, nil
}
