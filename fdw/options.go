package fdw

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/wippyai/pg-runtime/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeOptions fills a tagged struct from statement options and validates
// it. Fields use json tags for option names and validate tags for
// constraints:
//
//	type diskOptions struct {
//		Path    string `json:"path" validate:"required"`
//		Bucket  string `json:"bucket" validate:"required,alphanum"`
//		Verbose string `json:"verbose" validate:"omitempty,oneof=on off"`
//	}
//
// Option values are always strings on the wire, so numeric fields should be
// declared as strings and parsed by the caller.
func DecodeOptions(opts Options, out any) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return errors.Wrap(errors.PhasePlan, errors.KindInvalidInput, err, "options not encodable")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.PhasePlan, errors.KindInvalidInput, err, "options do not match the expected shape")
	}
	if err := validate.Struct(out); err != nil {
		return errors.Wrap(errors.PhasePlan, errors.KindInvalidInput, err, "option validation failed")
	}
	return nil
}
