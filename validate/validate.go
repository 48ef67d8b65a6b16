package validate

import (
	"github.com/go-playground/validator/v10"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/util"
)

// RegisterCustomValidators adds the storefront's validation tags to a validator
func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("eth_addr", EthValidator)
	v.RegisterValidation("signature", SignatureValidator)
}

// EthValidator validates ethereum addresses
var EthValidator validator.Func = func(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	if addr == "" {
		return true
	}
	return persist.EthereumAddress(addr).IsValid()
}

// SignatureValidator validates hex encoded 65 byte ECDSA signatures
var SignatureValidator validator.Func = func(fl validator.FieldLevel) bool {
	sig := fl.Field().String()
	if sig == "" {
		return true
	}
	return len(sig) == 132
}

// ValidationMap is a map of field names to the value and tag used to validate it
type ValidationMap map[string]ValWithTags

type ValWithTags struct {
	Value interface{}
	Tag   string
}

// ValidateFields validates each field in the map, returning a util.ErrInvalidInput for the first failure
func ValidateFields(validator *validator.Validate, fields ValidationMap) error {
	for name, valWithTag := range fields {
		if err := validator.Var(valWithTag.Value, valWithTag.Tag); err != nil {
			return util.ErrInvalidInput{Field: name, Reason: err.Error()}
		}
	}
	return nil
}

// WithCustomValidators returns a new validator with the storefront's tags registered
func WithCustomValidators() *validator.Validate {
	v := validator.New()
	RegisterCustomValidators(v)
	return v
}
