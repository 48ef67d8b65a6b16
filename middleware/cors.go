package middleware

import (
	"context"
	"strings"

	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/util"
)

// IsOriginAllowed reports whether the origin is in ALLOWED_ORIGINS. Every origin is allowed locally.
func IsOriginAllowed(ctx context.Context, requestOrigin string) bool {
	if env.GetString(ctx, "ENV") == "local" {
		return true
	}

	allowedOrigins := strings.Split(env.GetString(ctx, "ALLOWED_ORIGINS"), ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	return util.Contains(allowedOrigins, requestOrigin) || util.Contains(allowedOrigins, "*")
}
