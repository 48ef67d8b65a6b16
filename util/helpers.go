package util

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

const GinContextKey string = "GinContextKey"

func Contains[T comparable](s []T, str T) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}

	return false
}

// FirstNonErrorWithValue calls each function in order and returns the first result that didn't error.
// If every function fails, the errors are joined.
func FirstNonErrorWithValue[T any](ctx context.Context, fs ...func(ctx context.Context) (T, error)) (T, error) {
	var errs []error
	for _, f := range fs {
		it, err := f(ctx)
		if err == nil {
			return it, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return *new(T), errors.Join(errs...)
}

// GinContextFromContext retrieves a gin.Context previously stored in the request context via the GinContextToContext middleware,
// or nil if the request never passed through it.
func GinContextFromContext(ctx context.Context) *gin.Context {
	// If the current context is already a gin context, return it
	if gc, ok := ctx.(*gin.Context); ok {
		return gc
	}

	// Otherwise, find the gin context that was stored via middleware
	ginContext := ctx.Value(GinContextKey)
	gc, ok := ginContext.(*gin.Context)
	if !ok {
		return nil
	}

	return gc
}
