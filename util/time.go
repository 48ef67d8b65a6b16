package util

import (
	"context"
	"time"

	"github.com/mikeydub/go-storefront/service/logger"
)

// Track logs how long has passed since startTime. Meant to be deferred.
func Track(ctx context.Context, s string, startTime time.Time) {
	logger.For(ctx).Debugf("%s took %v", s, time.Since(startTime))
}
