package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Violations maps a field name to every rule it broke.
type Violations struct {
	Errors map[string][]error
}

func (violations Violations) MarshalJSON() ([]byte, error) {
	errors := make(map[string][]string)
	for fieldName, fieldErrors := range violations.Errors {
		errors[fieldName] = make([]string, len(fieldErrors))
		for index, fieldError := range fieldErrors {
			errors[fieldName][index] = fieldError.Error()
		}
	}

	return json.Marshal(map[string]map[string][]string{
		"errors": errors,
	})
}

func (violations Violations) IsEmpty() bool {
	return len(violations.Errors) == 0
}

// Fields returns the names of the offending fields in sorted order.
func (violations Violations) Fields() []string {
	fields := make([]string, 0, len(violations.Errors))
	for field := range violations.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ValidateFields checks decoded query or form fields against rules such as
// "required", "integer", "min:5" or "contains:@". A field that is absent
// and not required is skipped.
func ValidateFields(data map[string]string, rules map[string][]string) Violations {
	var violations Violations
	violations.Errors = make(map[string][]error)

	for fieldName, fieldRules := range rules {
		value, present := data[fieldName]

		var errorCollection []error
		for _, fieldRule := range fieldRules {
			if !present && fieldRule != "required" {
				continue
			}
			if err := validate(fieldRule, fieldName, value); err != nil {
				errorCollection = append(errorCollection, err)
			}
		}

		if len(errorCollection) != 0 {
			violations.Errors[fieldName] = errorCollection
		}
	}

	return violations
}

func validate(rule string, name string, value string) error {
	ruleName, argument, _ := strings.Cut(rule, ":")

	switch ruleName {
	case "required":
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	case "integer":
		if !ValidateInteger(value) {
			return fmt.Errorf("%s must be an integer", name)
		}
	case "boolean":
		if !ValidateBoolean(value) {
			return fmt.Errorf("%s must be a boolean", name)
		}
	case "min", "max":
		size, err := strconv.Atoi(argument)
		if err != nil {
			return fmt.Errorf("invalid validation rule :: %s", rule)
		}
		if ruleName == "min" && !ValidateGreaterThenOrEqual(value, size) {
			return fmt.Errorf("%s must be at least %d", name, size)
		}
		if ruleName == "max" && !ValidateLesserThenOrEqual(value, size) {
			return fmt.Errorf("%s must be at most %d", name, size)
		}
	case "contains":
		if !ValidateContains(value, argument) {
			return fmt.Errorf("%s must contain %q", name, argument)
		}
	default:
		return fmt.Errorf("invalid validation rule :: %s", rule)
	}

	return nil
}

// Numberic operations
func ValidateInteger(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}

func ValidateGreaterThenOrEqual(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt >= size
}

func ValidateLesserThenOrEqual(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt <= size
}

// Boolean operations
func ValidateBoolean(value string) bool {
	return ValidateTrue(value) || ValidateFalse(value)
}

func ValidateTrue(value string) bool {
	return value == "1" || value == "true"
}

func ValidateFalse(value string) bool {
	return value == "0" || value == "false"
}

// string operations
func ValidateContains(value string, needle string) bool {
	return strings.Contains(value, needle)
}
