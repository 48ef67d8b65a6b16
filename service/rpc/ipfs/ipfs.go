package ipfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/service/tracing"
	"github.com/mikeydub/go-storefront/util"
)

func init() {
	env.RegisterValidation("IPFS_URL", "required")
}

type ErrInfuraQuotaExceeded struct {
	Err error
}

func (r ErrInfuraQuotaExceeded) Unwrap() error { return r.Err }
func (r ErrInfuraQuotaExceeded) Error() string {
	return fmt.Sprintf("quota exceeded: %s", r.Err.Error())
}

// HTTPReader is a reader that uses a HTTP gateway to read from
type HTTPReader struct {
	Host   string
	Client *http.Client
}

func (r HTTPReader) Do(ctx context.Context, path string) (io.ReadCloser, error) {
	path = pathURL(r.Host, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if isInfura(path) && resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, ErrInfuraQuotaExceeded{Err: util.ErrHTTP{Status: resp.StatusCode, URL: path}}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, util.ErrHTTP{Status: resp.StatusCode, URL: path}
	}
	return resp.Body, nil
}

// IPFSReader is a reader that uses an IPFS shell to read from IPFS
type IPFSReader struct {
	Client *shell.Shell
}

func (r IPFSReader) Do(ctx context.Context, path string) (io.ReadCloser, error) {
	reader, err := r.Client.Cat(path)
	if err != nil && strings.Contains(err.Error(), "transfer quota reached") {
		return nil, ErrInfuraQuotaExceeded{Err: err}
	}
	return reader, err
}

// NewShell returns an IPFS shell with default configuration
func NewShell(ctx context.Context) *shell.Shell {
	sh := shell.NewShellWithClient(env.GetString(ctx, "IPFS_API_URL"), defaultHTTPClient(ctx))
	sh.SetTimeout(60 * time.Second)
	return sh
}

// Client reads pinned content through the configured gateway and falls back to the shell and a public gateway
type Client struct {
	Shell   *shell.Shell
	Gateway string
	HTTP    *http.Client
}

// NewClient returns a client configured from the environment
func NewClient(ctx context.Context) *Client {
	return &Client{
		Shell:   NewShell(ctx),
		Gateway: env.GetString(ctx, "IPFS_URL"),
		HTTP:    defaultHTTPClient(ctx),
	}
}

// GetResponse reads the content at path, trying each node until one succeeds
func (c *Client) GetResponse(ctx context.Context, path string) (io.ReadCloser, error) {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "ipfs://"), "ipfs/")
	return util.FirstNonErrorWithValue(ctx,
		func(ctx context.Context) (io.ReadCloser, error) {
			return HTTPReader{Host: c.Gateway, Client: c.HTTP}.Do(ctx, path)
		},
		func(ctx context.Context) (io.ReadCloser, error) {
			return IPFSReader{Client: c.Shell}.Do(ctx, path)
		},
		func(ctx context.Context) (io.ReadCloser, error) {
			return HTTPReader{Host: "https://ipfs.io", Client: c.HTTP}.Do(ctx, path)
		},
	)
}

// Upload pins the data and returns its ipfs:// uri
func (c *Client) Upload(ctx context.Context, data []byte) (string, error) {
	cid, err := c.Shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return "", err
	}
	return "ipfs://" + cid, nil
}

// DefaultGatewayFrom rewrites an IPFS URL to a gateway URL using the default gateway
func DefaultGatewayFrom(ctx context.Context, ipfsURL string) string {
	return PathGatewayFor(env.GetString(ctx, "IPFS_URL"), strings.TrimPrefix(ipfsURL, "ipfs://"))
}

// PathGatewayFor returns the path gateway URL for a CID
func PathGatewayFor(gatewayHost, cid string) string {
	return pathURL(gatewayHost, cid)
}

// defaultHTTPClient returns an http.Client configured with default settings intended for IPFS calls.
func defaultHTTPClient(ctx context.Context) *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: authTransport{
			RoundTripper:  tracing.NewTracingTransport(http.DefaultTransport, true),
			ProjectID:     env.GetString(ctx, "IPFS_PROJECT_ID"),
			ProjectSecret: env.GetString(ctx, "IPFS_PROJECT_SECRET"),
		},
	}
}

// authTransport decorates each request with a basic auth header.
type authTransport struct {
	http.RoundTripper
	ProjectID     string
	ProjectSecret string
}

func (t authTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.ProjectID != "" {
		r.SetBasicAuth(t.ProjectID, t.ProjectSecret)
	}
	return t.RoundTripper.RoundTrip(r)
}

// pathURL returns the gateway URL in path resolution sytle
func pathURL(host, path string) string {
	return fmt.Sprintf("%s/ipfs/%s", strings.TrimSuffix(host, "/"), path)
}

func isInfura(gateway string) bool {
	return strings.Contains(gateway, "infura")
}
