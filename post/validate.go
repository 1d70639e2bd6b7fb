package post

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form names so handlers can attach messages to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError carries one message per invalid form field.
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
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid post: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err carries field-level violations.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FieldErrors returns the per-field messages carried by err, or nil.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// Validate checks p against the post rules. It returns a *ValidationError
// listing every violated field, or nil.
func Validate(p *Post) error {
	fields := make(map[string]string)
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate post: %w", err)
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = message(fe)
			}
		}
	}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(p.Content) == "" {
		fields["content"] = "Content is required"
	}
	if p.HasInlineImage() && p.ImageURL != "" {
		fields["image"] = "Use either an uploaded image or an image URL, not both"
	}
	if p.HasInlineImage() && !strings.HasPrefix(p.ImageType, "image/") {
		fields["image"] = "Uploaded file is not an image"
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Title must be at most %d characters", MaxTitleLen)
		}
		return "Title is required"
	case "content":
		return "Content is required"
	case "category":
		return "Valid category is required"
	case "author":
		return "Author name is too long"
	case "image":
		return "Image URL is too long"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
