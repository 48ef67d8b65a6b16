package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mikeydub/go-storefront/service/logger"
	sentryutil "github.com/mikeydub/go-storefront/service/sentry"
	"github.com/mikeydub/go-storefront/service/tracing"
	"github.com/mikeydub/go-storefront/util"
)

const requestIDHeader = "X-Request-Id"

// HandleCORS sets the CORS headers
func HandleCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestOrigin := c.Request.Header.Get("Origin")

		if IsOriginAllowed(c, requestOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", requestOrigin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, sentry-trace, baggage")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Type, "+requestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestID tags every log line of a request with an id, reusing the caller's id when one is sent
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.NewContextWithFields(c.Request.Context(), logrus.Fields{
			"requestId": requestID,
		}))

		c.Next()
	}
}

// ErrLogger is a middleware that logs errors
func ErrLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.For(c).Errorf("%s %s %s %s %s", c.Request.Method, c.Request.URL, c.ClientIP(), c.Request.Header.Get("User-Agent"), c.Errors.JSON())
		}
	}
}

// GinContextToContext is a middleware that adds the Gin context to the request context,
// allowing the Gin context to be retrieved from services that only see a context.Context.
func GinContextToContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), util.GinContextKey, c)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Sentry reports panics and, when reportGinErrors is set, the errors attached to the request.
// Errors marked public were already answered with a client facing message and are not reported.
func Sentry(reportGinErrors bool) gin.HandlerFunc {
	handler := sentrygin.New(sentrygin.Options{Repanic: true})

	return func(c *gin.Context) {
		// Clone a new hub for each request
		hub := sentry.CurrentHub().Clone()

		// BeforeSend isn't called for transactions, so scrub them with an event processor as well
		hub.Scope().AddEventProcessor(sentryutil.ScrubEventHeaders)

		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		// sentrygin calls c.Next() for us
		handler(c)

		if reportGinErrors {
			for _, err := range c.Errors.ByType(gin.ErrorTypePrivate) {
				sentryutil.ReportError(c.Request.Context(), err.Err)
			}
		}
	}
}

// Tracing starts a transaction per request, continuing the caller's trace if one was sent
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		description := fmt.Sprintf("%s %s", c.Request.Method, c.FullPath())
		span, ctx := tracing.StartSpan(c.Request.Context(), "gin.server", description,
			sentry.WithTransactionName(description),
			sentry.ContinueFromRequest(c.Request),
		)

		if c.Request.Method == http.MethodOptions {
			// Nothing to trace in a preflight
			span.Sampled = sentry.SampledFalse
		}

		defer tracing.FinishSpan(span)

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		tracing.AddEventDataToSpan(span, map[string]interface{}{
			"HTTP Status Code": c.Writer.Status(),
		})
	}
}
