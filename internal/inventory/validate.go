package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists the fields that made a record unacceptable.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid required fields: %s", strings.Join(e.Fields, ", "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// required holds the only fields an assessment is checked for. Every other
// field is stored as sent, whatever its type.
type required struct {
	ProcessName string `json:"processName" validate:"required"`
	Status      string `json:"status" validate:"required"`
}

// ValidateAssessment checks the required fields of an assessment record.
func ValidateAssessment(r Record) error {
	var a required
	b, err := json.Marshal(Record{
		FieldProcessName: r[FieldProcessName],
		FieldStatus:      r[FieldStatus],
	})
	if err == nil {
		err = json.Unmarshal(b, &a)
	}
	if err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return &ValidationError{Fields: []string{te.Field}}
		}
		return fmt.Errorf("decode assessment: %w", err)
	}
	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		sort.Strings(fields)
		return &ValidationError{Fields: fields}
	}
	return nil
}
