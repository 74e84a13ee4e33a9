package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError locates a config problem by file and either position
// (syntax) or key (values).
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ValidateYAMLSyntax reads path and checks that it parses as YAML. JSON
// config files pass as well. A missing or blank file is valid.
func ValidateYAMLSyntax(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &ValidationError{FilePath: path, Message: err.Error()}
	}
	return ValidateYAMLSyntaxFromBytes(data, path)
}

// ValidateYAMLSyntaxFromBytes is ValidateYAMLSyntax for data already in memory.
func ValidateYAMLSyntaxFromBytes(data []byte, path string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err == nil {
		return nil
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{FilePath: path, Message: strings.Join(typeErr.Errors, "; ")}
	}
	line, column := yamlPosition(err.Error())
	return &ValidationError{
		FilePath: path,
		Line:     line,
		Column:   column,
		Message:  stripYAMLPrefix(err.Error()),
	}
}

// ValidateConfigValues checks value constraints and reports the first failing
// key.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return &ValidationError{
			FilePath: filePath,
			Field:    fieldPath(first.Namespace()),
			Message:  formatValidationError(first),
		}
	}
	return &ValidationError{FilePath: filePath, Message: err.Error()}
}

// newValidator reports fields by their koanf key.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return validate
}

// fieldPath drops the struct name from a validator namespace:
// "Configuration.author_replacements[0].from" -> "author_replacements[0].from".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// yamlPosition reads the position out of a yaml.v3 message such as
// "yaml: line 5: could not find expected ':'". Zero means unknown.
func yamlPosition(msg string) (line, column int) {
	if n, _ := fmt.Sscanf(msg, "yaml: line %d: column %d:", &line, &column); n == 2 {
		return line, column
	}
	if n, _ := fmt.Sscanf(msg, "yaml: line %d:", &line); n == 1 {
		return line, 1
	}
	return 0, 0
}

// stripYAMLPrefix keeps the last clause of a yaml.v3 message.
func stripYAMLPrefix(msg string) string {
	if !strings.HasPrefix(msg, "yaml:") {
		return msg
	}
	if i := strings.LastIndex(msg, ": "); i > 0 {
		return msg[i+2:]
	}
	return msg
}

// formatValidationError formats a validation error for a specific field.
func formatValidationError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "url":
		return "must be an absolute URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fieldErr.Param())
	case "gtefield":
		return fmt.Sprintf("must not be less than %s", toKey(fieldErr.Param()))
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}

// toKey maps a struct field name to its koanf key.
func toKey(field string) string {
	if f, ok := reflect.TypeOf(Configuration{}).FieldByName(field); ok {
		if name, _, _ := strings.Cut(f.Tag.Get("koanf"), ","); name != "" {
			return name
		}
	}
	return field
}
