package mint

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mikeydub/go-storefront/service/catalog"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/reservation"
	"github.com/mikeydub/go-storefront/service/signature"
)

// ErrNFTNotFound is returned when the requested id is not in the catalog
type ErrNFTNotFound struct {
	ID int
}

func (e ErrNFTNotFound) Error() string {
	return fmt.Sprintf("nft %d does not exist", e.ID)
}

// ErrNFTAlreadyMinted is returned when the ledger has issued the item
type ErrNFTAlreadyMinted struct {
	ID int
}

func (e ErrNFTAlreadyMinted) Error() string {
	return fmt.Sprintf("nft %d has already been minted", e.ID)
}

// ErrNFTReserved is returned when another address holds an outstanding authorization for the item
type ErrNFTReserved struct {
	ID int
}

func (e ErrNFTReserved) Error() string {
	return fmt.Sprintf("nft %d is reserved for another address", e.ID)
}

// ErrSigningFailed wraps a failure to produce the authorization
type ErrSigningFailed struct {
	ID  int
	Err error
}

func (e ErrSigningFailed) Error() string {
	return fmt.Sprintf("failed to sign mint request for nft %d: %s", e.ID, e.Err)
}

func (e ErrSigningFailed) Unwrap() error {
	return e.Err
}

// ErrReservationFailed wraps a failure of the reservation store itself
type ErrReservationFailed struct {
	ID  int
	Err error
}

func (e ErrReservationFailed) Error() string {
	return fmt.Sprintf("failed to reserve nft %d: %s", e.ID, e.Err)
}

func (e ErrReservationFailed) Unwrap() error {
	return e.Err
}

// DefaultHold is how long an open ended authorization keeps its item reserved when Window.Hold is unset
const DefaultHold = 10 * time.Minute

// Window is the policy for an authorization's validity
type Window struct {
	// Duration of the window, zero for an open ended authorization
	Duration time.Duration
	// StartImmediately backdates the start to the unix epoch so clock skew can't reject a fresh authorization
	StartImmediately bool
	// Hold is how long an open ended authorization keeps the item reserved for its recipient
	Hold time.Duration
}

// Bounds returns the window's start and end. An open ended window ends signature.OpenEndedValidity from now.
func (w Window) Bounds(now time.Time) (time.Time, time.Time) {
	start := now
	if w.StartImmediately {
		start = time.Unix(0, 0)
	}
	if w.Duration <= 0 {
		return start, now.Add(signature.OpenEndedValidity)
	}
	return start, now.Add(w.Duration)
}

// ReservedUntil returns when the reservation for an authorization ending at end lapses
func (w Window) ReservedUntil(now, end time.Time) time.Time {
	if w.Duration > 0 {
		return end
	}
	hold := w.Hold
	if hold <= 0 {
		hold = DefaultHold
	}
	if until := now.Add(hold); until.Before(end) {
		return until
	}
	return end
}

// Service issues mint authorizations for catalog items
type Service struct {
	catalog      *catalog.Provider
	signer       signature.Generator
	reservations reservation.Store
	window       Window
	now          func() time.Time
}

func NewService(c *catalog.Provider, signer signature.Generator, reservations reservation.Store, window Window) *Service {
	return &Service{
		catalog:      c,
		signer:       signer,
		reservations: reservations,
		window:       window,
		now:          time.Now,
	}
}

// Authorize checks that the item can still be minted, reserves it for the recipient and signs the
// authorization. Nothing is reserved or signed when the item is unknown, minted, or reserved for
// another address. A recipient asking again while its reservation is live gets a fresh authorization,
// so a wallet that rejected or failed the first one can retry.
func (s *Service) Authorize(ctx context.Context, id int, to persist.EthereumAddress) (signature.SignedPayload, error) {
	ctx = logger.NewContextWithFields(ctx, logrus.Fields{"catalogID": id, "to": to})

	item, err := s.catalog.Get(ctx, id)
	if err != nil {
		return signature.SignedPayload{}, ErrNFTNotFound{ID: id}
	}
	if item.Minted {
		return signature.SignedPayload{}, ErrNFTAlreadyMinted{ID: id}
	}

	now := s.now()
	start, end := s.window.Bounds(now)

	payload := signature.PayloadToSign{
		Metadata: signature.Metadata{
			Name:        item.Name,
			Description: item.Description,
			Image:       item.URL,
			Attributes:  map[string]interface{}{persist.CatalogIDAttribute: item.ID},
		},
		Price:         item.Price,
		To:            to,
		MintStartTime: start,
		MintEndTime:   end,
	}

	reservedUntil := s.window.ReservedUntil(now, end)

	ok, err := s.reservations.Reserve(ctx, id, to, reservedUntil)
	if err != nil {
		return signature.SignedPayload{}, ErrReservationFailed{ID: id, Err: err}
	}
	if !ok {
		return signature.SignedPayload{}, ErrNFTReserved{ID: id}
	}

	signed, err := s.signer.Generate(ctx, payload)
	if err != nil {
		if releaseErr := s.reservations.Release(ctx, id); releaseErr != nil {
			logger.For(ctx).WithError(releaseErr).Error("failed to release reservation after signing failure")
		}
		return signature.SignedPayload{}, ErrSigningFailed{ID: id, Err: err}
	}

	logger.For(ctx).Infof("issued mint authorization valid until %s, reserved until %s", end.Format(time.RFC3339), reservedUntil.Format(time.RFC3339))

	return signed, nil
}
