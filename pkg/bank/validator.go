package bank

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"digital.vasic.attachprobe/pkg/model"
)

// ValidationError is a problem found in a suite file. Field is a
// path into the file such as "expectations[2].model".
type ValidationError struct {
	Field   string
	Message string
}

// Error formats the problem as "field: message".
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var suiteValidator = newSuiteValidator()

func newSuiteValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateFile parses a suite file and returns every problem found.
// Validator kinds are checked against the built-in registry.
func ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{Field: "file", Message: err.Error()}}
	}
	file, err := parse(data)
	if err != nil {
		return []ValidationError{{Field: "syntax", Message: err.Error()}}
	}
	return Validate(file, model.NewRegistry())
}

// Validate checks a parsed suite: struct constraints first, then
// cross references between models and expectations.
func Validate(file *SuiteFile, reg *model.Registry) []ValidationError {
	errs := structErrors(file)

	models := make(map[string]ModelDef)
	for i, m := range file.Models {
		path := fmt.Sprintf("models[%d]", i)
		if _, dup := models[m.Name]; dup && m.Name != "" {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate model: %s", m.Name),
			})
		}
		models[m.Name] = m
		errs = append(errs, validateModel(path, m, reg)...)
	}

	ids := make(map[string]bool)
	for i := range file.Expectations {
		e := &file.Expectations[i]
		path := fmt.Sprintf("expectations[%d]", i)
		if ids[e.ID] && e.ID != "" {
			errs = append(errs, ValidationError{
				Field:   path + ".id",
				Message: fmt.Sprintf("duplicate ID: %s", e.ID),
			})
		}
		ids[e.ID] = true

		if _, ok := models[e.Model]; !ok && e.Model != "" {
			errs = append(errs, ValidationError{
				Field:   path + ".model",
				Message: fmt.Sprintf("unknown model: %s", e.Model),
			})
		}
		errs = append(errs, validateRule(path, e)...)
	}
	return errs
}

func structErrors(file *SuiteFile) []ValidationError {
	err := suiteValidator.Struct(file)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "suite", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		msg := fmt.Sprintf("failed %s", fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out = append(out, ValidationError{Field: ns, Message: msg})
	}
	return out
}

func validateModel(path string, m ModelDef, reg *model.Registry) []ValidationError {
	var errs []ValidationError
	for j, v := range m.Validations {
		vpath := fmt.Sprintf("%s.validations[%d]", path, j)
		if v.Field != "" && !slices.Contains(m.Attachments, v.Field) {
			errs = append(errs, ValidationError{
				Field:   vpath + ".field",
				Message: fmt.Sprintf("%s is not an attachment of %s", v.Field, m.Name),
			})
		}
		if v.Kind == "" {
			continue
		}
		if !reg.Has(v.Kind) {
			errs = append(errs, ValidationError{
				Field:   vpath + ".kind",
				Message: fmt.Sprintf("unknown validator kind: %s", v.Kind),
			})
			continue
		}
		if _, err := reg.Build(v.Kind, v.Options); err != nil {
			errs = append(errs, ValidationError{
				Field:   vpath + ".options",
				Message: err.Error(),
			})
		}
	}
	return errs
}

func validateRule(path string, e *Expectation) []ValidationError {
	if e.Kind() == "" {
		return []ValidationError{{
			Field:   path,
			Message: "exactly one of content_type, aspect_ratio, dimension is required",
		}}
	}
	d := e.Dimension
	if d == nil {
		return nil
	}
	var errs []ValidationError
	if d.Width != nil && (d.WidthMin != nil || d.WidthMax != nil) {
		errs = append(errs, ValidationError{
			Field:   path + ".dimension.width",
			Message: "width excludes width_min and width_max",
		})
	}
	if d.Height != nil && (d.HeightMin != nil || d.HeightMax != nil) {
		errs = append(errs, ValidationError{
			Field:   path + ".dimension.height",
			Message: "height excludes height_min and height_max",
		})
	}
	if d.WidthMin != nil && d.WidthMax != nil && *d.WidthMin > *d.WidthMax {
		errs = append(errs, ValidationError{
			Field:   path + ".dimension.width_min",
			Message: "width_min exceeds width_max",
		})
	}
	if d.HeightMin != nil && d.HeightMax != nil && *d.HeightMin > *d.HeightMax {
		errs = append(errs, ValidationError{
			Field:   path + ".dimension.height_min",
			Message: "height_min exceeds height_max",
		})
	}
	return errs
}

func parse(data []byte) (*SuiteFile, error) {
	var file SuiteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}
