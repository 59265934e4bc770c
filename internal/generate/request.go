// Package generate talks to the coloring page generator.
package generate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Option is a selectable value on the create form.
type Option struct {
	Value    string
	LabelKey string
}

var (
	// Styles offered on the create form.
	Styles = []Option{
		{Value: "cartoon", LabelKey: "create.style.cartoon"},
		{Value: "realistic", LabelKey: "create.style.realistic"},
		{Value: "mandala", LabelKey: "create.style.mandala"},
		{Value: "geometric", LabelKey: "create.style.geometric"},
	}
	// Complexities offered on the create form.
	Complexities = []Option{
		{Value: "simple", LabelKey: "create.complexity.simple"},
		{Value: "medium", LabelKey: "create.complexity.medium"},
		{Value: "complex", LabelKey: "create.complexity.complex"},
	}
)

// Request is a generation request as submitted by the create form.
type Request struct {
	Prompt     string `json:"prompt" form:"prompt" validate:"required,min=3,max=500,prompt_text"`
	Style      string `json:"style" form:"style" validate:"required,oneof=cartoon realistic mandala geometric"`
	Complexity string `json:"complexity" form:"complexity" validate:"required,oneof=simple medium complex"`
	Theme      string `json:"theme,omitempty" form:"theme" validate:"omitempty,max=60,prompt_text"`
}

// Normalize trims whitespace and lowercases the enumerated fields.
func (r Request) Normalize() Request {
	return Request{
		Prompt:     strings.TrimSpace(r.Prompt),
		Style:      strings.ToLower(strings.TrimSpace(r.Style)),
		Complexity: strings.ToLower(strings.TrimSpace(r.Complexity)),
		Theme:      strings.TrimSpace(r.Theme),
	}
}

// ErrInvalidRequest is matched by every *ValidationError.
var ErrInvalidRequest = errors.New("generate: invalid request")

// ValidationError lists the offending form fields and the failed rule for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalidRequest.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, e.Fields[name]))
	}
	return ErrInvalidRequest.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Fields[field]
	return ok
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("prompt_text", func(fl validator.FieldLevel) bool {
			for _, r := range fl.Field().String() {
				if unicode.IsControl(r) && r != '\n' && r != '\t' {
					return false
				}
			}
			return true
		})
		validateInst = v
	})
	return validateInst
}

// Validate checks a normalized request.
func (r Request) Validate() error {
	err := validatorInstance().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("generate: validate request: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}
