package tracing

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
)

// NewRedisHook records each redis command as a span. Only the command name and key are kept,
// values are never attached.
func NewRedisHook(db int, dbName string, continueOnly bool) redis.Hook {
	return redisHook{
		db:           db,
		dbName:       dbName,
		continueOnly: continueOnly,
	}
}

type redisHook struct {
	db           int
	dbName       string
	continueOnly bool
}

var _ redis.Hook = redisHook{}

type spanContextKey struct{}

func (r redisHook) BeforeProcess(ctx context.Context, cmd redis.Cmder) (context.Context, error) {
	if !inTransaction(ctx, r.continueOnly) {
		return ctx, nil
	}

	span, ctx := StartSpan(ctx, "redis."+strings.ToLower(cmd.FullName()), r.dbName)

	data := map[string]interface{}{"Redis DB": r.db}
	if args := cmd.Args(); len(args) > 1 {
		data["Redis Key"] = args[1]
	}
	AddEventDataToSpan(span, data)

	return context.WithValue(ctx, spanContextKey{}, span), nil
}

func (redisHook) AfterProcess(ctx context.Context, cmd redis.Cmder) error {
	span, ok := ctx.Value(spanContextKey{}).(*sentry.Span)
	if !ok {
		return nil
	}

	if err := cmd.Err(); err != nil && err != redis.Nil {
		AddEventDataToSpan(span, map[string]interface{}{"Redis Error": err.Error()})
	}

	FinishSpan(span)
	return nil
}

func (r redisHook) BeforeProcessPipeline(ctx context.Context, cmds []redis.Cmder) (context.Context, error) {
	if !inTransaction(ctx, r.continueOnly) {
		return ctx, nil
	}

	span, ctx := StartSpan(ctx, "redis.pipeline", r.dbName)

	AddEventDataToSpan(span, map[string]interface{}{
		"Redis Pipeline Num Cmds": len(cmds),
		"Redis DB":                r.db,
	})

	return context.WithValue(ctx, spanContextKey{}, span), nil
}

func (redisHook) AfterProcessPipeline(ctx context.Context, cmds []redis.Cmder) error {
	if span, ok := ctx.Value(spanContextKey{}).(*sentry.Span); ok {
		FinishSpan(span)
	}

	return nil
}
