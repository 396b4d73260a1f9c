package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// ValidationError reports rejected input fields, keyed by the field's form name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// fieldError builds a ValidationError for a single field.
func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and converts failures to a ValidationError.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "alphanum":
		return "may only contain letters and digits"
	case "email":
		return "must be a valid e-mail address"
	default:
		return "is invalid"
	}
}

// PostInput is the editable part of a post.
type PostInput struct {
	Title string `json:"title" validate:"required,max=200"`
	Text  string `json:"text" validate:"required"`
}

// CommentInput is what a visitor submits when commenting.
type CommentInput struct {
	Author string `json:"author" validate:"required,max=100"`
	Text   string `json:"text" validate:"required,max=1000"`
}

// Credentials is a login attempt.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserInput describes a new author account.
type UserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// ugc allows the markup readers may use in post and comment bodies.
var ugc = bluemonday.UGCPolicy()

// normalize trims the fields. Limits are checked on this form, before
// sanitize escapes the text for storage.
func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Text = strings.TrimSpace(in.Text)
}

func (in *PostInput) sanitize() {
	in.Text = strings.TrimSpace(ugc.Sanitize(in.Text))
}

func (in *CommentInput) normalize() {
	in.Author = strings.TrimSpace(in.Author)
	in.Text = strings.TrimSpace(in.Text)
}

func (in *CommentInput) sanitize() {
	in.Text = strings.TrimSpace(ugc.Sanitize(in.Text))
}
