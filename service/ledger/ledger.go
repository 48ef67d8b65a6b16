package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/tracing"
)

// IssuedToken is a token the collection has already minted
type IssuedToken struct {
	TokenID  persist.TokenID       `json:"token_id"`
	Metadata persist.TokenMetadata `json:"metadata"`
}

// Ledger lists the tokens issued by a collection
type Ledger interface {
	GetTokensByCollection(ctx context.Context, collection persist.EthereumAddress) ([]IssuedToken, error)
}

// ErrUnknownProvider is returned when LEDGER_PROVIDER names no known provider
type ErrUnknownProvider struct {
	Name string
}

func (e ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown ledger provider: %s", e.Name)
}

// NewHTTPClient returns the client used for outbound ledger calls
func NewHTTPClient(ctx context.Context) *http.Client {
	timeout := env.GetDuration(ctx, "HTTP_CLIENT_TIMEOUT")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: tracing.NewTracingTransport(http.DefaultTransport, true),
	}
}
