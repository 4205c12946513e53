package validation

import (
	"encoding/json"
	"testing"

	"github.com/freekieb7/wrangler/test"
)

func TestValidateFields(t *testing.T) {
	violations := ValidateFields(
		map[string]string{
			"min":   "abc",
			"max":   "500",
			"email": "nobody",
		},
		map[string][]string{
			"min":   {"integer"},
			"max":   {"required", "integer", "max:100"},
			"email": {"required", "contains:@"},
			"name":  {"required"},
			"debug": {"boolean"},
		},
	)

	test.AssertTrue(t, !violations.IsEmpty(), "violations expected")
	test.AssertEqual(t, []string{"email", "max", "min", "name"}, violations.Fields())
	test.AssertEqual(t, 1, len(violations.Errors["max"]))
	test.AssertEqual(t, "max must be at most 100", violations.Errors["max"][0].Error())
}

func TestValidateFieldsPass(t *testing.T) {
	violations := ValidateFields(
		map[string]string{"min": "5", "debug": "true"},
		map[string][]string{"min": {"integer", "min:1"}, "debug": {"boolean"}},
	)

	test.AssertTrue(t, violations.IsEmpty(), "no violations expected")
}

func TestValidateFieldsUnknownRule(t *testing.T) {
	violations := ValidateFields(
		map[string]string{"x": "1"},
		map[string][]string{"x": {"between:1"}},
	)

	test.AssertEqual(t, "invalid validation rule :: between:1", violations.Errors["x"][0].Error())
}

func TestViolationsMarshalJSON(t *testing.T) {
	violations := ValidateFields(map[string]string{}, map[string][]string{"name": {"required"}})

	data, err := json.Marshal(violations)
	test.AssertNoError(t, err)
	test.AssertEqual(t, `{"errors":{"name":["name is required"]}}`, string(data))
}

func TestValidateHelpers(t *testing.T) {
	test.AssertTrue(t, ValidateInteger("42"), "42 is an integer")
	test.AssertTrue(t, !ValidateInteger("4.2"), "4.2 is not an integer")
	test.AssertTrue(t, ValidateBoolean("0"), "0 is a boolean")
	test.AssertTrue(t, !ValidateBoolean("yes"), "yes is not a boolean")
	test.AssertTrue(t, ValidateGreaterThenOrEqual("5", 5), "5 >= 5")
	test.AssertTrue(t, !ValidateLesserThenOrEqual("6", 5), "6 > 5")
}
