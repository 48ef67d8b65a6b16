package tracing

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
)

type tracingTransport struct {
	http.RoundTripper

	continueOnly bool
}

// NewTracingTransport wraps a transport so outgoing requests are recorded as spans. With continueOnly,
// requests made outside of a sampled transaction are passed through untraced.
func NewTracingTransport(roundTripper http.RoundTripper, continueOnly bool) http.RoundTripper {
	if roundTripper == nil {
		roundTripper = http.DefaultTransport
	}

	if existing, ok := roundTripper.(*tracingTransport); ok {
		roundTripper = existing.RoundTripper
	}

	return &tracingTransport{RoundTripper: roundTripper, continueOnly: continueOnly}
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !inTransaction(req.Context(), t.continueOnly) {
		return t.RoundTripper.RoundTrip(req)
	}

	span, _ := StartSpan(req.Context(), "http."+strings.ToLower(req.Method), fmt.Sprintf("HTTP %s %s", req.Method, req.URL.Redacted()))
	defer FinishSpan(span)

	req.Header.Add(sentry.SentryTraceHeader, span.ToSentryTrace())

	response, err := t.RoundTripper.RoundTrip(req)
	if err != nil {
		AddEventDataToSpan(span, map[string]interface{}{"HTTP Error": err.Error()})
		return response, err
	}

	AddEventDataToSpan(span, map[string]interface{}{
		"HTTP Status Code": response.StatusCode,
	})

	return response, err
}
