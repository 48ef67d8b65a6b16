package server

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeydub/go-storefront/service/signature"
)

func signatureTestKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

func chainID() *big.Int {
	return big.NewInt(4)
}

type mintBody struct {
	ID      int    `json:"id"`
	Address string `json:"address"`
}

func TestGetNFTs_EmptyLedger(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})

	items := ts.getNFTs(t)

	assert.Len(items, 3)
	for i, item := range items {
		assert.Equal(i, item.ID)
		assert.False(item.Minted)
	}
	assert.Equal("NFT 2", items[1].Name)
}

func TestGetNFTs_MarksIssuedItems(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{tokens: ledgerTokens(2, "9", "not a number")})

	items := ts.getNFTs(t)

	assert.Len(items, 3)
	assert.False(items[0].Minted)
	assert.False(items[1].Minted)
	assert.True(items[2].Minted)
}

func TestGetNFTs_LedgerFailureServesStaticCatalog(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{err: errors.New("upstream unavailable")})

	items := ts.getNFTs(t)

	assert.Len(items, 3)
	for _, item := range items {
		assert.False(item.Minted)
	}
}

func TestMintNFT_Success(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})

	resp := ts.postMint(t, mintBody{ID: 1, Address: testRecipient.String()})

	assert.Equal(http.StatusCreated, resp.StatusCode)
	assertJSONContentType(assert, resp)

	var signed signature.SignedPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&signed))

	assert.Equal("NFT 2", signed.Payload.Metadata.Name)
	assert.Equal("second", signed.Payload.Metadata.Description)
	assert.Equal("https://example.com/1.png", signed.Payload.Metadata.Image)
	assert.Equal(0.02, signed.Payload.Price)
	assert.Equal(testRecipient.Checksummed(), signed.Payload.To.Checksummed())
	assert.Equal("ipfs://QmTestMetadata", signed.Payload.URI)
	assert.Len(signed.Signature, 132)
	assert.Greater(signed.Payload.MintEndTime, signed.Payload.MintStartTime)
}

func TestMintNFT_AlreadyMintedSkipsSigning(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{tokens: ledgerTokens(0)})

	resp := ts.postMint(t, mintBody{ID: 0, Address: testRecipient.String()})

	assertBadRequest(assert, resp)
	assert.EqualValues(0, atomic.LoadInt32(&ts.signer.calls))
}

func TestMintNFT_UnknownID(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})

	for _, id := range []int{3, 7, 1000} {
		resp := ts.postMint(t, mintBody{ID: id, Address: testRecipient.String()})
		assertBadRequest(assert, resp)
	}
	assert.EqualValues(0, atomic.LoadInt32(&ts.signer.calls))
}

func TestMintNFT_InvalidRequest(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})

	bodies := []interface{}{
		`{"id": 1`,
		`{"address": "0xABC0000000000000000000000000000000000ABC"}`,
		`{"id": 1}`,
		`{"id": "one", "address": "0xABC0000000000000000000000000000000000ABC"}`,
		mintBody{ID: -1, Address: testRecipient.String()},
		mintBody{ID: 1, Address: "0xABC"},
		mintBody{ID: 1, Address: "not an address"},
	}

	for _, body := range bodies {
		resp := ts.postMint(t, body)
		assert.Equal("Invalid request", assertBadRequest(assert, resp), "%v", body)
	}
	assert.EqualValues(0, atomic.LoadInt32(&ts.signer.calls))
}

func TestMintNFT_ConcurrentRequestsIssueOneAuthorization(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})

	const n = 10
	var created int32
	var rejected int32

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		address := fmt.Sprintf("0x%040x", i+1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/api/get-nfts", "application/json", jsonReader(t, mintBody{ID: 2, Address: address}))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusCreated:
				atomic.AddInt32(&created, 1)
			case http.StatusBadRequest:
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(1, created)
	assert.EqualValues(n-1, rejected)
	assert.EqualValues(1, atomic.LoadInt32(&ts.signer.calls))

	// nothing has been issued on the ledger yet
	items := ts.getNFTs(t)
	assert.False(items[2].Minted)
}

func TestMintNFT_RecipientCanRetryUnusedAuthorization(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})

	decode := func(resp *http.Response) signature.SignedPayload {
		var signed signature.SignedPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&signed))
		return signed
	}

	resp := ts.postMint(t, mintBody{ID: 1, Address: testRecipient.String()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode(resp)

	// the wallet rejected the transaction, so the ledger never issued the token
	items := ts.getNFTs(t)
	assert.False(items[1].Minted)

	resp = ts.postMint(t, mintBody{ID: 1, Address: testRecipient.String()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode(resp)
	assert.NotEqual(first.Payload.UID, second.Payload.UID)
	assert.NotEqual(first.Signature, second.Signature)

	resp = ts.postMint(t, mintBody{ID: 1, Address: otherRecipient.String()})
	assert.Equal("NFT 1 is reserved by another buyer", assertBadRequest(assert, resp))

	assert.EqualValues(2, atomic.LoadInt32(&ts.signer.calls))

	ids, err := ts.store.Reserved(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal([]int{1}, ids)
}

func TestMintNFT_SigningFailureReleasesReservation(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})
	ts.signer.setErr(errors.New("hsm offline"))

	resp := ts.postMint(t, mintBody{ID: 1, Address: testRecipient.String()})

	assert.Equal(http.StatusInternalServerError, resp.StatusCode)
	assertJSONContentType(assert, resp)

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(body.Error.Message, "hsm offline")

	ids, err := ts.store.Reserved(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(ids)

	ts.signer.setErr(nil)
	resp = ts.postMint(t, mintBody{ID: 1, Address: testRecipient.String()})
	assert.Equal(http.StatusCreated, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t, stubLedger{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/get-nfts", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(http.StatusNoContent, resp.StatusCode)
	assert.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST")
	assert.NotEmpty(resp.Header.Get("X-Request-Id"))
}
