package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator: validation of board snapshots and produced actions
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// RegisterValidation only fails on an empty or baked-in tag name
	_ = v.RegisterValidation("objecttype", func(fl validator.FieldLevel) bool {
		return AllowedObjectTypes[ObjectType(fl.Field().String())]
	})

	return &Validator{validate: v}
}

// ValidateStruct runs the struct's validate tags, diving into slices tagged
// with "dive".
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAction checks an Action's envelope and, for creates, that the
// property bag matches the schema of its objectType with no extra keys.
func (v *Validator) ValidateAction(a Action) error {
	switch a.Type {
	case ActionCreate:
		if !AllowedObjectTypes[a.ObjectType] {
			return fmt.Errorf("invalid object type: %q", a.ObjectType)
		}
		if a.ObjectID != "" {
			return fmt.Errorf("create action must not carry objectId")
		}
		if a.Properties == nil {
			return fmt.Errorf("create action requires properties")
		}
		schema := GetSchemaForType(a.ObjectType)
		if schema == nil {
			return fmt.Errorf("no schema found for object type: %s", a.ObjectType)
		}
		if err := propertiesToStruct(a.Properties, schema); err != nil {
			return fmt.Errorf("properties for %s: %w", a.ObjectType, err)
		}
		return v.ValidateStruct(schema)

	case ActionUpdate:
		if a.ObjectID == "" {
			return fmt.Errorf("update action requires objectId")
		}
		if a.ObjectType != "" {
			return fmt.Errorf("update action must not carry objectType")
		}
		if a.Properties == nil {
			return fmt.Errorf("update action requires properties")
		}
		for _, key := range a.Properties.Keys() {
			if !UpdatableProperties[key] {
				return fmt.Errorf("property %q cannot be updated", key)
			}
		}
		return nil

	case ActionDelete:
		if a.ObjectID == "" {
			return fmt.Errorf("delete action requires objectId")
		}
		if a.ObjectType != "" || a.Properties != nil {
			return fmt.Errorf("delete action carries only objectId")
		}
		return nil

	default:
		return fmt.Errorf("invalid action type: %q", a.Type)
	}
}

// propertiesToStruct: converts a property bag into a typed schema struct
// using JSON marshaling. Keys the schema does not declare are an error.
func propertiesToStruct(props *Properties, target interface{}) error {
	jsonData, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

// formatValidationErrors converts validator errors to a user-friendly error message
func formatValidationErrors(errors validator.ValidationErrors) error {
	var messages []string
	for _, err := range errors {
		messages = append(messages, formatSingleError(err))
	}
	return fmt.Errorf("validation failed: %s", messages[0]) // Return first error for simplicity
}

// formatSingleError formats a single validation error with common cases
func formatSingleError(err validator.FieldError) string {
	field := err.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	tag := err.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("'%s' is required", field)
	case "min", "max":
		return fmt.Sprintf("'%s' value out of allowed range", field)
	case "objecttype":
		return fmt.Sprintf("'%s' is not a known object type", field)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, err.Param())
	default:
		return fmt.Sprintf("'%s' is invalid", field)
	}
}
