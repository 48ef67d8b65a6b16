package signature

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mikeydub/go-storefront/contracts"
	"github.com/mikeydub/go-storefront/util"
)

// MintRequest converts the payload into the struct the collection's mintWithSignature takes
func (p Payload) MintRequest() (contracts.ITokenERC721MintRequest, error) {
	price, err := p.PriceWei()
	if err != nil {
		return contracts.ITokenERC721MintRequest{}, err
	}

	uid, err := hexutil.Decode(p.UID)
	if err != nil {
		return contracts.ITokenERC721MintRequest{}, fmt.Errorf("invalid uid: %w", err)
	}
	if len(uid) != 32 {
		return contracts.ITokenERC721MintRequest{}, fmt.Errorf("invalid uid: expected 32 bytes, got %d", len(uid))
	}

	req := contracts.ITokenERC721MintRequest{
		To:                     p.To.Address(),
		RoyaltyRecipient:       p.RoyaltyRecipient.Address(),
		RoyaltyBps:             big.NewInt(p.RoyaltyBps),
		PrimarySaleRecipient:   p.PrimarySaleRecipient.Address(),
		Uri:                    p.URI,
		Price:                  price,
		Currency:               p.CurrencyAddress.Address(),
		ValidityStartTimestamp: big.NewInt(p.MintStartTime),
		ValidityEndTimestamp:   big.NewInt(p.MintEndTime),
	}
	copy(req.Uid[:], uid)

	return req, nil
}

// PriceWei returns the payload's price in wei
func (p Payload) PriceWei() (*big.Int, error) {
	return util.EtherToWei(p.Price)
}
