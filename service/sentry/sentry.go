package sentryutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/util"
)

const errorContextName = "error context"

// scrubbedHeaders never leave the process
var scrubbedHeaders = []string{"Authorization", "Cookie", "X-Api-Key"}

type errorContext struct {
	Mapped   bool
	MappedTo string
}

// ReportRemappedError reports the original error along with the type it was translated to for the client
func ReportRemappedError(ctx context.Context, originalErr error, remappedErr interface{}) {
	hub := SentryHubFromContext(ctx)
	if hub == nil {
		logger.For(ctx).Warnln("could not report error to Sentry because hub is nil")
		return
	}

	// Use a new scope so our error context and tag don't persist beyond this error
	hub.WithScope(func(scope *sentry.Scope) {
		if remappedErr != nil {
			SetErrorContext(scope, true, fmt.Sprintf("%T", remappedErr))
			scope.SetTag("remappedError", "true")
		} else {
			SetErrorContext(scope, false, "")
		}

		hub.CaptureException(originalErr)
	})
}

func ReportError(ctx context.Context, err error) {
	ReportRemappedError(ctx, err, nil)
}

// ScrubEventHeaders removes credentials from the request attached to an event
func ScrubEventHeaders(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}

	event.Request.Cookies = ""
	for name := range event.Request.Headers {
		for _, scrubbed := range scrubbedHeaders {
			if strings.EqualFold(name, scrubbed) {
				event.Request.Headers[name] = "[filtered]"
			}
		}
	}

	return event
}

func UpdateErrorFingerprints(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event == nil || hint == nil || hint.OriginalException == nil {
		return event
	}

	// errors.errorString isn't exported, so match on the type name to stop every errors.New()
	// from landing in one group
	exceptionType := fmt.Sprintf("%T", hint.OriginalException)
	if exceptionType == "*errors.errorString" || exceptionType == "*fmt.wrapError" {
		event.Fingerprint = []string{"{{ default }}", hint.OriginalException.Error()}
	}

	return event
}

func SetErrorContext(scope *sentry.Scope, mapped bool, mappedTo string) {
	scope.SetContext(errorContextName, sentry.Context{
		"Mapped":   mapped,
		"MappedTo": mappedTo,
	})
}

// SentryHubFromContext gets a Hub from the supplied context, or from an underlying
// gin.Context if one is available.
func SentryHubFromContext(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}

	if gc := util.GinContextFromContext(ctx); gc != nil {
		if hub := sentrygin.GetHubFromContext(gc); hub != nil {
			return hub
		}
	}

	return nil
}
