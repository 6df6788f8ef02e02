package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all handlers; field names are reported by their
// JSON tag.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationDetails validates req and returns one detail per failing field,
// or nil when req is valid.
func validationDetails(req any) []ValidationDetail {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []ValidationDetail{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
	out := make([]ValidationDetail, 0, len(ve))
	for _, fe := range ve {
		out = append(out, ValidationDetail{
			Loc:  []string{"body", fe.Field()},
			Msg:  validationMessage(fe),
			Type: validationType(fe.Tag()),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "boolean":
		return "must be true or false"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

func validationType(tag string) string {
	switch tag {
	case "required":
		return "missing"
	case "min":
		return "string_too_short"
	case "max":
		return "string_too_long"
	case "oneof":
		return "enum"
	default:
		return "value_error"
	}
}

// bodyDecodeDetail is the 422 detail for a body that is not valid JSON.
func bodyDecodeDetail(err error) []ValidationDetail {
	return []ValidationDetail{{Loc: []string{"body"}, Msg: "invalid JSON body: " + err.Error(), Type: "json_invalid"}}
}
