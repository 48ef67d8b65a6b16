package env

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/spf13/viper"
)

var validators = map[string][]string{}

var v = validator.New()

var validatorsMu = &sync.Mutex{}

// RegisterValidation registers validator tags that are checked whenever the variable is read
func RegisterValidation(name string, tags ...string) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	validators[name] = dedupe(append(validators[name], tags...))
}

// Validate checks every registered variable and returns the first failure
func Validate() error {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	for name, tags := range validators {
		for _, tag := range tags {
			if err := v.Var(viper.GetString(name), tag); err != nil {
				return ErrInvalidEnvVar{Name: name, Tag: tag, Err: err}
			}
		}
	}
	return nil
}

func validate(ctx context.Context, name string) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	for _, tag := range validators[name] {
		err := v.Var(viper.GetString(name), tag)
		if err != nil {
			logger.For(ctx).Errorf("invalid env var: %s, tag: %s, err: %s", name, tag, err.Error())
		}
	}
}

func GetString(ctx context.Context, name string) string {
	validate(ctx, name)
	return viper.GetString(name)
}

func GetBool(ctx context.Context, name string) bool {
	validate(ctx, name)
	return viper.GetBool(name)
}

func GetInt64(ctx context.Context, name string) int64 {
	validate(ctx, name)
	return viper.GetInt64(name)
}

func GetFloat64(ctx context.Context, name string) float64 {
	validate(ctx, name)
	return viper.GetFloat64(name)
}

func GetDuration(ctx context.Context, name string) time.Duration {
	validate(ctx, name)
	return viper.GetDuration(name)
}

// ErrInvalidEnvVar is returned when a variable fails one of its registered validators
type ErrInvalidEnvVar struct {
	Name string
	Tag  string
	Err  error
}

func (e ErrInvalidEnvVar) Error() string {
	return "invalid env var " + e.Name + " (" + e.Tag + "): " + e.Err.Error()
}

func (e ErrInvalidEnvVar) Unwrap() error {
	return e.Err
}

func dedupe(src []string) []string {
	result := src[:0]

	seen := make(map[string]bool)
	for _, x := range src {
		if !seen[x] {
			result = append(result, x)
			seen[x] = true
		}
	}
	return result
}
