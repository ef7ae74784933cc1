package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterForm is submitted by the registration page.
type RegisterForm struct {
	Name      string `form:"name" validate:"required,max=250"`
	Email     string `form:"email" validate:"required,email,max=250"`
	Password1 string `form:"password1" validate:"required,min=8,max=72"` // bcrypt ignores bytes past 72
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// LoginForm is submitted by the login page.
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// SearchForm is submitted by the search page.
type SearchForm struct {
	Search string `form:"search" json:"q" validate:"required"`
}

// RecipeForm is submitted when a user adds a recipe.
type RecipeForm struct {
	Name string `form:"name" json:"name" validate:"required,max=250"`
}

// ValidationError lists the failing form fields and their messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// newValidator returns a validator that reports fields by their form name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateForm trims string fields and validates form, returning a
// *ValidationError when any rule fails.
func validateForm(v *validator.Validate, form interface{}) error {
	trimStrings(form)
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fieldMessage(e)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", e.Param())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// trimStrings trims surrounding whitespace from every string field except
// passwords, which are taken verbatim.
func trimStrings(form interface{}) {
	rv := reflect.ValueOf(form)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() {
			continue
		}
		if strings.HasPrefix(strings.ToLower(rt.Field(i).Name), "password") {
			continue
		}
		f.SetString(strings.TrimSpace(f.String()))
	}
}
