package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ValidationError reports malformed or missing input. Nothing has been
// written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type NotFoundError struct {
	Resource string
	Key      any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.Key)
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(resource string, key any) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// persist wraps a storage failure unless it already carries a typed error.
func persist(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	var pe *PersistenceError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// lookup converts gorm.ErrRecordNotFound into a NotFoundError.
func lookup(resource string, key any, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource, key)
	}
	return persist("load "+resource, err)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate runs the struct tags of v and reports the first failing field as
// a ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "datetime":
		return invalid(field, "must be a YYYY-MM-DD date")
	case "oneof":
		return invalid(field, "must be one of [%s]", fe.Param())
	case "max":
		return invalid(field, "must be at most %s characters", fe.Param())
	case "min", "gte", "gt":
		return invalid(field, "must be at least %s", fe.Param())
	case "dive":
		return invalid(field, "is invalid")
	}
	return invalid(field, "failed %s validation", fe.Tag())
}
