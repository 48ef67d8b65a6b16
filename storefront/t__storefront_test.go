package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/signature"
	"github.com/mikeydub/go-storefront/util"
)

const buyer persist.EthereumAddress = "0xABC0000000000000000000000000000000000ABC"

var testSignature = "0x" + strings.Repeat("ab", 65)

func threeItems() persist.Catalog {
	return persist.Catalog{
		{ID: 0, Name: "NFT 1", Description: "first", URL: "https://example.com/0.png", Price: 0.01},
		{ID: 1, Name: "NFT 2", Description: "second", URL: "https://example.com/1.png", Price: 0.02},
		{ID: 2, Name: "NFT 3", Description: "third", URL: "https://example.com/2.png", Price: 0.03},
	}
}

func signedFor(id int, to persist.EthereumAddress) signature.SignedPayload {
	return signature.SignedPayload{
		Payload: signature.Payload{
			To:              to,
			Price:           threeItems()[id].Price,
			CurrencyAddress: persist.NativeCurrencyAddress,
			UID:             "0x" + strings.Repeat("01", 32),
			URI:             "ipfs://QmTestMetadata",
			Metadata:        signature.Metadata{Name: threeItems()[id].Name},
		},
		Signature: testSignature,
	}
}

type fakeClient struct {
	mu        sync.Mutex
	items     persist.Catalog
	getErr    error
	mintErr   error
	gets      int
	requested []int
}

func (f *fakeClient) GetNFTs(ctx context.Context) (persist.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.items.Copy(), nil
}

func (f *fakeClient) RequestMint(ctx context.Context, id int, address persist.EthereumAddress) (signature.SignedPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, id)
	if f.mintErr != nil {
		return signature.SignedPayload{}, f.mintErr
	}
	f.items[id].Minted = true
	return signedFor(id, address), nil
}

type fakeWallet struct {
	chainID *big.Int
	err     error
	// block, when set, holds MintWithSignature until it is closed
	block  chan struct{}
	minted []signature.Payload
	mu     sync.Mutex
}

func (f *fakeWallet) Address() persist.EthereumAddress { return buyer }

func (f *fakeWallet) ChainID(ctx context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeWallet) MintWithSignature(ctx context.Context, payload signature.Payload, sig string) (string, error) {
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minted = append(f.minted, payload)
	return "0xhash", nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []string
	failures []string
}

func (r *recordingNotifier) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, msg)
}

func (r *recordingNotifier) Failure(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func newTestView(client *fakeClient, wallet *fakeWallet) (*View, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewView(client, wallet, n, big.NewInt(4)), n
}

func TestView_WrongNetworkGatesInteraction(t *testing.T) {
	assert := assert.New(t)
	client := &fakeClient{items: threeItems()}
	v, _ := newTestView(client, &fakeWallet{chainID: big.NewInt(1)})

	require.NoError(t, v.Load(context.Background()))

	assert.Equal(StateWrongNetwork, v.State())
	assert.Equal(0, client.gets)
	assert.ErrorIs(v.Mint(context.Background(), 0), ErrWrongNetwork)

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))
	assert.Equal("Please connect to the Rinkeby Testnet\n", buf.String())
}

func TestView_LoadFailureStaysLoading(t *testing.T) {
	assert := assert.New(t)
	v, _ := newTestView(&fakeClient{getErr: errors.New("connection refused")}, &fakeWallet{chainID: big.NewInt(4)})

	assert.Error(v.Load(context.Background()))
	assert.Equal(StateLoading, v.State())
	assert.ErrorIs(v.Mint(context.Background(), 0), ErrNotLoaded)

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))
	assert.Equal("Loading...\n", buf.String())
}

func TestView_MintRefetchesCatalog(t *testing.T) {
	assert := assert.New(t)
	client := &fakeClient{items: threeItems()}
	wallet := &fakeWallet{chainID: big.NewInt(4)}
	v, n := newTestView(client, wallet)

	require.NoError(t, v.Load(context.Background()))
	assert.Equal(StateLoaded, v.State())
	assert.False(v.Items()[1].Minted)

	require.NoError(t, v.Mint(context.Background(), 1))

	assert.Equal(2, client.gets)
	assert.True(v.Items()[1].Minted)
	assert.False(v.Minting(1))
	assert.Equal([]string{mintSucceededMessage}, n.success)
	assert.Empty(n.failures)
	require.Len(t, wallet.minted, 1)
	assert.Equal("NFT 2", wallet.minted[0].Metadata.Name)
	assert.ErrorAs(v.Mint(context.Background(), 1), &ErrNotEligible{})
}

func TestView_MintFailureLeavesItemEligible(t *testing.T) {
	assert := assert.New(t)
	client := &fakeClient{items: threeItems()}
	wallet := &fakeWallet{chainID: big.NewInt(4), err: errors.New("user rejected transaction")}
	v, n := newTestView(client, wallet)

	require.NoError(t, v.Load(context.Background()))
	assert.Error(v.Mint(context.Background(), 0))

	assert.False(v.Minting(0))
	assert.Equal([]string{mintFailedMessage}, n.failures)
	assert.Empty(n.success)
	assert.Equal(1, client.gets)

	wallet.err = nil
	assert.NoError(v.Mint(context.Background(), 0))
}

func TestView_RejectedRequestNotifiesFailure(t *testing.T) {
	assert := assert.New(t)
	client := &fakeClient{items: threeItems(), mintErr: ErrMintRejected{ID: 2, Message: "NFT 2 already minted"}}
	wallet := &fakeWallet{chainID: big.NewInt(4)}
	v, n := newTestView(client, wallet)

	require.NoError(t, v.Load(context.Background()))
	assert.ErrorAs(v.Mint(context.Background(), 2), &ErrMintRejected{})
	assert.Empty(wallet.minted)
	assert.Equal([]string{mintFailedMessage}, n.failures)
}

func TestView_IneligibleItems(t *testing.T) {
	assert := assert.New(t)
	items := threeItems()
	items[0].Minted = true
	client := &fakeClient{items: items}
	v, _ := newTestView(client, &fakeWallet{chainID: big.NewInt(4)})

	require.NoError(t, v.Load(context.Background()))

	assert.ErrorAs(v.Mint(context.Background(), 0), &ErrNotEligible{})
	assert.ErrorAs(v.Mint(context.Background(), 5), &persist.ErrCatalogItemNotFound{})
	assert.Empty(client.requested)
}

func TestView_SecondMintWhileMintingIsRejected(t *testing.T) {
	assert := assert.New(t)
	client := &fakeClient{items: threeItems()}
	wallet := &fakeWallet{chainID: big.NewInt(4), block: make(chan struct{})}
	v, _ := newTestView(client, wallet)
	require.NoError(t, v.Load(context.Background()))

	done := make(chan error)
	go func() { done <- v.Mint(context.Background(), 2) }()

	require.Eventually(t, func() bool { return v.Minting(2) }, timeout, tick)

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))
	assert.Contains(buf.String(), "Minting... You will need to approve 1 transaction")

	assert.ErrorAs(v.Mint(context.Background(), 2), &ErrNotEligible{})

	close(wallet.block)
	assert.NoError(<-done)
	assert.False(v.Minting(2))
}

func TestView_RenderGrid(t *testing.T) {
	assert := assert.New(t)
	items := threeItems()
	items[2].Minted = true
	v, _ := newTestView(&fakeClient{items: items}, &fakeWallet{chainID: big.NewInt(4)})
	require.NoError(t, v.Load(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(lines[1], "NFT 1")
	assert.Contains(lines[1], "0.01 ETH")
	assert.Contains(lines[1], "mint 0")
	assert.Contains(lines[3], "This NFT has already been minted")
}

func TestColorNotifier(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	n := ColorNotifier{Out: &buf}

	n.Success(mintSucceededMessage)
	n.Failure(mintFailedMessage)

	assert.Contains(buf.String(), mintSucceededMessage)
	assert.Contains(buf.String(), mintFailedMessage)
}

func TestClient_GetNFTs(t *testing.T) {
	assert := assert.New(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodGet, r.Method)
		assert.Equal(nftsPath, r.URL.Path)
		json.NewEncoder(w).Encode(threeItems())
	}))
	defer ts.Close()

	items, err := NewClient(ts.URL+"/", nil).GetNFTs(context.Background())
	require.NoError(t, err)
	assert.Equal(threeItems(), items)
}

func TestClient_RequestMint(t *testing.T) {
	assert := assert.New(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID      int    `json:"id"`
			Address string `json:"address"`
		}
		assert.NoError(json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(buyer.String(), body.Address)

		w.Header().Set("Content-Type", "application/json")
		switch body.ID {
		case 1:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(signedFor(1, buyer))
		case 2:
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(util.MessageResponse{Message: "NFT 2 already minted"})
		case 3:
			w.WriteHeader(http.StatusCreated)
			bad := signedFor(1, buyer)
			bad.Signature = "0x1234"
			json.NewEncoder(w).Encode(bad)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(util.ErrorDetailResponse{Error: util.ErrorDetail{Message: "signer unavailable"}})
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)

	signed, err := c.RequestMint(context.Background(), 1, buyer)
	require.NoError(t, err)
	assert.Equal("NFT 2", signed.Payload.Metadata.Name)
	assert.Equal(testSignature, signed.Signature)

	_, err = c.RequestMint(context.Background(), 2, buyer)
	var rejected ErrMintRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal("NFT 2 already minted", rejected.Message)

	_, err = c.RequestMint(context.Background(), 3, buyer)
	assert.ErrorAs(err, &ErrInvalidAuthorization{})
	assert.ErrorAs(err, &util.ErrInvalidInput{})

	_, err = c.RequestMint(context.Background(), 4, buyer)
	var httpErr util.ErrHTTP
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(http.StatusInternalServerError, httpErr.Status)
	assert.Contains(httpErr.Error(), "signer unavailable")
}

const (
	timeout = 2 * time.Second
	tick    = 10 * time.Millisecond
)
