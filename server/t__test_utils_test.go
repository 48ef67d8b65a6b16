package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeydub/go-storefront/service/catalog"
	"github.com/mikeydub/go-storefront/service/ledger"
	"github.com/mikeydub/go-storefront/service/mint"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/reservation"
	"github.com/mikeydub/go-storefront/service/signature"
)

const (
	testCollection persist.EthereumAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testRecipient  persist.EthereumAddress = "0xABC0000000000000000000000000000000000ABC"
	otherRecipient persist.EthereumAddress = "0xDEF0000000000000000000000000000000000DEF"
)

type stubLedger struct {
	tokens []ledger.IssuedToken
	err    error
}

func (s stubLedger) GetTokensByCollection(ctx context.Context, collection persist.EthereumAddress) ([]ledger.IssuedToken, error) {
	return s.tokens, s.err
}

func issued(id interface{}) ledger.IssuedToken {
	return ledger.IssuedToken{
		TokenID:  "0",
		Metadata: persist.TokenMetadata{"attributes": map[string]interface{}{persist.CatalogIDAttribute: id}},
	}
}

type stubUploader struct{}

func (stubUploader) Upload(ctx context.Context, data []byte) (string, error) {
	return "ipfs://QmTestMetadata", nil
}

// countingSigner counts calls before handing off to the wrapped generator, or fails with err
type countingSigner struct {
	signature.Generator
	calls int32

	mu  sync.Mutex
	err error
}

func (c *countingSigner) Generate(ctx context.Context, p signature.PayloadToSign) (signature.SignedPayload, error) {
	atomic.AddInt32(&c.calls, 1)
	c.mu.Lock()
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return signature.SignedPayload{}, err
	}
	return c.Generator.Generate(ctx, p)
}

func (c *countingSigner) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

type testServer struct {
	*httptest.Server
	signer *countingSigner
	store  reservation.Store
}

func threeItems() persist.Catalog {
	return persist.Catalog{
		{ID: 0, Name: "NFT 1", Description: "first", URL: "https://example.com/0.png", Price: 0.01},
		{ID: 1, Name: "NFT 2", Description: "second", URL: "https://example.com/1.png", Price: 0.02},
		{ID: 2, Name: "NFT 3", Description: "third", URL: "https://example.com/2.png", Price: 0.03},
	}
}

// newTestServer starts a server over three items, an in-memory reservation store and a real EIP-712 signer
func newTestServer(t *testing.T, l ledger.Ledger) *testServer {
	gin.SetMode(gin.ReleaseMode) // Prevent excessive logs

	key, err := signatureTestKey()
	require.NoError(t, err)

	store := reservation.NewMemoryStore()
	provider, err := catalog.NewProvider(threeItems(), l, testCollection)
	require.NoError(t, err)

	signer := &countingSigner{Generator: signature.NewEIP712Generator(key, chainID(), testCollection, stubUploader{})}
	minter := mint.NewService(provider, signer, store, mint.Window{Duration: 3 * time.Minute})

	ts := httptest.NewServer(NewRouter(provider, minter))
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, signer: signer, store: store}
}

func (ts *testServer) getNFTs(t *testing.T) persist.Catalog {
	resp, err := http.Get(ts.URL + "/api/get-nfts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assertValidJSONResponse(assert.New(t), resp)

	var items persist.Catalog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	return items
}

func (ts *testServer) postMint(t *testing.T, body interface{}) *http.Response {
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}

	resp, err := http.Post(ts.URL+"/api/get-nfts", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func assertValidResponse(assert *assert.Assertions, resp *http.Response) {
	assert.Equal(http.StatusOK, resp.StatusCode, "Status should be 200")
}

func assertValidJSONResponse(assert *assert.Assertions, resp *http.Response) {
	assertValidResponse(assert, resp)
	assertJSONContentType(assert, resp)
}

func assertJSONContentType(assert *assert.Assertions, resp *http.Response) {
	val, ok := resp.Header["Content-Type"]
	assert.True(ok, "Content-Type header should be set")
	assert.Equal("application/json; charset=utf-8", val[0], "Response should be in JSON")
}

func assertBadRequest(assert *assert.Assertions, resp *http.Response) string {
	assert.Equal(http.StatusBadRequest, resp.StatusCode, "Status should be 400")
	assertJSONContentType(assert, resp)

	var body struct {
		Message string `json:"message"`
	}
	assert.NoError(json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(body.Message)
	return body.Message
}

func ledgerTokens(ids ...interface{}) []ledger.IssuedToken {
	tokens := make([]ledger.IssuedToken, len(ids))
	for i, id := range ids {
		tokens[i] = issued(id)
	}
	return tokens
}

func jsonReader(t *testing.T, body interface{}) *bytes.Reader {
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}
