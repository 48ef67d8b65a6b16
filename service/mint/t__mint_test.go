package mint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeydub/go-storefront/service/catalog"
	"github.com/mikeydub/go-storefront/service/ledger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/reservation"
	"github.com/mikeydub/go-storefront/service/signature"
)

const (
	testAddress  persist.EthereumAddress = "0xABC0000000000000000000000000000000000ABC"
	otherAddress persist.EthereumAddress = "0xDEF0000000000000000000000000000000000DEF"
)

type stubLedger struct {
	tokens []ledger.IssuedToken
}

func (s stubLedger) GetTokensByCollection(ctx context.Context, collection persist.EthereumAddress) ([]ledger.IssuedToken, error) {
	return s.tokens, nil
}

type fakeSigner struct {
	calls int32
	err   error
	last  signature.PayloadToSign
	mu    sync.Mutex
}

func (f *fakeSigner) Generate(ctx context.Context, p signature.PayloadToSign) (signature.SignedPayload, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = p
	f.mu.Unlock()
	if f.err != nil {
		return signature.SignedPayload{}, f.err
	}
	return signature.SignedPayload{
		Payload: signature.Payload{
			To:            p.To,
			Price:         p.Price,
			MintStartTime: p.MintStartTime.Unix(),
			MintEndTime:   p.MintEndTime.Unix(),
			Metadata:      p.Metadata,
		},
		Signature: "0xsigned",
	}, nil
}

func threeItems() persist.Catalog {
	return persist.Catalog{
		{ID: 0, Name: "NFT 1", Description: "first", URL: "https://example.com/0", Price: 0.01},
		{ID: 1, Name: "NFT 2", Description: "second", URL: "https://example.com/1", Price: 0.02},
		{ID: 2, Name: "NFT 3", Description: "third", URL: "https://example.com/2", Price: 0.03},
	}
}

func newTestService(t *testing.T, l ledger.Ledger, signer signature.Generator, store reservation.Store) *Service {
	return newTestServiceWithWindow(t, l, signer, store, Window{Duration: 3 * time.Minute})
}

func newTestServiceWithWindow(t *testing.T, l ledger.Ledger, signer signature.Generator, store reservation.Store, w Window) *Service {
	p, err := catalog.NewProvider(threeItems(), l, "")
	require.NoError(t, err)
	return NewService(p, signer, store, w)
}

func TestAuthorize_Success(t *testing.T) {
	assert := assert.New(t)

	signer := &fakeSigner{}
	s := newTestService(t, stubLedger{}, signer, reservation.NewMemoryStore())

	signed, err := s.Authorize(context.Background(), 1, testAddress)
	require.NoError(t, err)

	assert.Equal("0xsigned", signed.Signature)
	assert.Equal("NFT 2", signed.Payload.Metadata.Name)
	assert.Equal("second", signed.Payload.Metadata.Description)
	assert.Equal("https://example.com/1", signed.Payload.Metadata.Image)
	assert.Equal(0.02, signed.Payload.Price)
	assert.Equal(map[string]interface{}{"id": 1}, signed.Payload.Metadata.Attributes)
	assert.Equal(testAddress, signer.last.To)
	assert.Equal(3*time.Minute, signer.last.MintEndTime.Sub(signer.last.MintStartTime))
	assert.Equal(signer.last.MintEndTime.Unix(), signed.Payload.MintEndTime)
}

func TestAuthorize_AlreadyMintedDoesNotSign(t *testing.T) {
	assert := assert.New(t)

	l := stubLedger{tokens: []ledger.IssuedToken{{TokenID: "0", Metadata: persist.TokenMetadata{"attributes": map[string]interface{}{"id": float64(2)}}}}}
	signer := &fakeSigner{}
	s := newTestService(t, l, signer, reservation.NewMemoryStore())

	_, err := s.Authorize(context.Background(), 2, testAddress)
	assert.ErrorAs(err, &ErrNFTAlreadyMinted{})
	assert.EqualValues(0, atomic.LoadInt32(&signer.calls))
}

func TestAuthorize_UnknownID(t *testing.T) {
	assert := assert.New(t)

	signer := &fakeSigner{}
	s := newTestService(t, stubLedger{}, signer, reservation.NewMemoryStore())

	for _, id := range []int{-1, 3, 1000} {
		_, err := s.Authorize(context.Background(), id, testAddress)
		assert.ErrorAs(err, &ErrNFTNotFound{})
	}
	assert.EqualValues(0, atomic.LoadInt32(&signer.calls))
}

func TestAuthorize_ConcurrentRequestsHaveOneWinner(t *testing.T) {
	signer := &fakeSigner{}
	s := newTestService(t, stubLedger{}, signer, reservation.NewMemoryStore())

	var wins, taken int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		to := persist.EthereumAddress(fmt.Sprintf("0x%040x", i+1))
		go func() {
			defer wg.Done()
			_, err := s.Authorize(context.Background(), 0, to)
			if err == nil {
				atomic.AddInt32(&wins, 1)
			} else if errors.As(err, &ErrNFTReserved{}) {
				atomic.AddInt32(&taken, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	assert.EqualValues(t, 9, taken)
	assert.EqualValues(t, 1, atomic.LoadInt32(&signer.calls))
}

func TestAuthorize_SigningFailureReleasesReservation(t *testing.T) {
	assert := assert.New(t)

	store := reservation.NewMemoryStore()
	cause := errors.New("key unavailable")
	signer := &fakeSigner{err: cause}
	s := newTestService(t, stubLedger{}, signer, store)

	_, err := s.Authorize(context.Background(), 1, testAddress)
	assert.ErrorAs(err, &ErrSigningFailed{})
	assert.ErrorIs(err, cause)

	ids, err := store.Reserved(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(ids)

	signer.err = nil
	_, err = s.Authorize(context.Background(), 1, testAddress)
	assert.NoError(err)
}

func TestAuthorize_ReservedItemIsTakenForOtherAddresses(t *testing.T) {
	signer := &fakeSigner{}
	s := newTestService(t, stubLedger{}, signer, reservation.NewMemoryStore())

	_, err := s.Authorize(context.Background(), 0, testAddress)
	require.NoError(t, err)

	_, err = s.Authorize(context.Background(), 0, otherAddress)
	assert.ErrorAs(t, err, &ErrNFTReserved{})
	assert.EqualValues(t, 1, atomic.LoadInt32(&signer.calls))
}

func TestAuthorize_SameAddressRetriesAfterUnusedAuthorization(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	store := reservation.NewMemoryStore()
	signer := &fakeSigner{}
	s := newTestService(t, stubLedger{}, signer, store)
	s.now = func() time.Time { return now }

	_, err := s.Authorize(ctx, 1, testAddress)
	require.NoError(t, err)

	// nothing was minted, so the item still reads as available
	item, err := s.catalog.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(item.Minted)

	now = now.Add(time.Minute)
	signed, err := s.Authorize(ctx, 1, persist.EthereumAddress(strings.ToLower(testAddress.String())))
	require.NoError(t, err)
	assert.Equal(now.Add(3*time.Minute).Unix(), signed.Payload.MintEndTime)
	assert.EqualValues(2, atomic.LoadInt32(&signer.calls))

	_, err = s.Authorize(ctx, 1, otherAddress)
	assert.ErrorAs(err, &ErrNFTReserved{})
}

func TestAuthorize_OpenEndedWindowHoldsReservationBriefly(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	store := reservation.NewMemoryStore()
	signer := &fakeSigner{}
	s := newTestServiceWithWindow(t, stubLedger{}, signer, store, Window{StartImmediately: true, Hold: 5 * time.Minute})
	s.now = func() time.Time { return now }

	signed, err := s.Authorize(ctx, 2, testAddress)
	require.NoError(t, err)
	assert.EqualValues(0, signed.Payload.MintStartTime)
	assert.Equal(now.Add(signature.OpenEndedValidity).Unix(), signed.Payload.MintEndTime)

	ids, err := store.Reserved(ctx, now.Add(4*time.Minute))
	require.NoError(t, err)
	assert.Equal([]int{2}, ids)

	ids, err = store.Reserved(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(ids)
}

func TestWindowBounds(t *testing.T) {
	assert := assert.New(t)
	now := time.Unix(1_700_000_000, 0)

	start, end := Window{Duration: time.Minute}.Bounds(now)
	assert.Equal(now, start)
	assert.Equal(now.Add(time.Minute), end)

	start, end = Window{Duration: time.Minute, StartImmediately: true}.Bounds(now)
	assert.Equal(time.Unix(0, 0), start)
	assert.Equal(now.Add(time.Minute), end)

	start, end = Window{}.Bounds(now)
	assert.Equal(now, start)
	assert.Equal(now.Add(signature.OpenEndedValidity), end)
}

func TestWindowReservedUntil(t *testing.T) {
	assert := assert.New(t)
	now := time.Unix(1_700_000_000, 0)

	w := Window{Duration: time.Hour}
	_, end := w.Bounds(now)
	assert.Equal(end, w.ReservedUntil(now, end))

	w = Window{}
	_, end = w.Bounds(now)
	assert.Equal(now.Add(DefaultHold), w.ReservedUntil(now, end))

	w = Window{Hold: time.Minute}
	_, end = w.Bounds(now)
	assert.Equal(now.Add(time.Minute), w.ReservedUntil(now, end))
}
