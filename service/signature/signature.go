package signature

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/util"
)

// OpenEndedValidity is how long an authorization issued without a configured window stays valid
const OpenEndedValidity = 10 * 365 * 24 * time.Hour

const (
	domainName    = "TokenERC721"
	domainVersion = "1"
	primaryType   = "MintRequest"
)

// Metadata is the token metadata document pinned for a mint
type Metadata struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Image       string                 `json:"image"`
	Attributes  map[string]interface{} `json:"attributes"`
}

// PayloadToSign describes the mint the server is authorizing
type PayloadToSign struct {
	Metadata      Metadata
	Price         float64
	To            persist.EthereumAddress
	MintStartTime time.Time
	MintEndTime   time.Time
}

// Payload is the signed mint request in the form the wallet submits to the collection
type Payload struct {
	To                   persist.EthereumAddress `json:"to"`
	Price                float64                 `json:"price"`
	CurrencyAddress      persist.EthereumAddress `json:"currencyAddress"`
	MintStartTime        int64                   `json:"mintStartTime"`
	MintEndTime          int64                   `json:"mintEndTime"`
	UID                  string                  `json:"uid"`
	PrimarySaleRecipient persist.EthereumAddress `json:"primarySaleRecipient"`
	RoyaltyRecipient     persist.EthereumAddress `json:"royaltyRecipient"`
	RoyaltyBps           int64                   `json:"royaltyBps"`
	URI                  string                  `json:"uri"`
	Metadata             Metadata                `json:"metadata"`
}

// SignedPayload is a payload and the collection signer's signature over it
type SignedPayload struct {
	Payload   Payload `json:"payload"`
	Signature string  `json:"signature"`
}

// Generator issues mint authorizations
type Generator interface {
	Generate(ctx context.Context, p PayloadToSign) (SignedPayload, error)
}

// MetadataUploader pins a metadata document and returns its uri
type MetadataUploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

var ErrInvalidRecipient = errors.New("recipient is not a valid address")

var ErrInvalidWindow = errors.New("validity window ends before it starts")

// EIP712Generator signs MintRequests for a TokenERC721 collection with the collection's minter key
type EIP712Generator struct {
	key        *ecdsa.PrivateKey
	chainID    *big.Int
	collection persist.EthereumAddress
	uploader   MetadataUploader
	newUID     func() [32]byte
}

func NewEIP712Generator(key *ecdsa.PrivateKey, chainID *big.Int, collection persist.EthereumAddress, uploader MetadataUploader) *EIP712Generator {
	return &EIP712Generator{
		key:        key,
		chainID:    chainID,
		collection: collection,
		uploader:   uploader,
		newUID:     randomUID,
	}
}

// Signer returns the address whose signature the collection will verify
func (g *EIP712Generator) Signer() persist.EthereumAddress {
	return persist.EthereumAddress(crypto.PubkeyToAddress(g.key.PublicKey).Hex())
}

func (g *EIP712Generator) Generate(ctx context.Context, p PayloadToSign) (SignedPayload, error) {
	if !p.To.IsValid() {
		return SignedPayload{}, ErrInvalidRecipient
	}
	if !p.MintEndTime.After(p.MintStartTime) {
		return SignedPayload{}, ErrInvalidWindow
	}

	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return SignedPayload{}, err
	}

	uri, err := g.uploader.Upload(ctx, metadata)
	if err != nil {
		return SignedPayload{}, fmt.Errorf("failed to upload metadata: %w", err)
	}

	uid := g.newUID()
	payload := Payload{
		To:                   p.To.Checksummed(),
		Price:                p.Price,
		CurrencyAddress:      persist.NativeCurrencyAddress,
		MintStartTime:        p.MintStartTime.Unix(),
		MintEndTime:          p.MintEndTime.Unix(),
		UID:                  hexutil.Encode(uid[:]),
		PrimarySaleRecipient: persist.ZeroAddress,
		RoyaltyRecipient:     persist.ZeroAddress,
		RoyaltyBps:           0,
		URI:                  uri,
		Metadata:             p.Metadata,
	}

	typedData, err := g.TypedData(payload)
	if err != nil {
		return SignedPayload{}, err
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return SignedPayload{}, err
	}

	sig, err := crypto.Sign(hash, g.key)
	if err != nil {
		return SignedPayload{}, err
	}
	sig[64] += 27

	logger.For(ctx).WithFields(logrus.Fields{"to": payload.To, "uri": uri, "uid": payload.UID}).Debug("signed mint request")

	return SignedPayload{Payload: payload, Signature: hexutil.Encode(sig)}, nil
}

// TypedData builds the EIP-712 MintRequest the collection contract verifies for a payload
func (g *EIP712Generator) TypedData(p Payload) (apitypes.TypedData, error) {
	price, err := util.EtherToWei(p.Price)
	if err != nil {
		return apitypes.TypedData{}, err
	}

	uid, err := hexutil.Decode(p.UID)
	if err != nil {
		return apitypes.TypedData{}, fmt.Errorf("invalid uid: %w", err)
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			primaryType: []apitypes.Type{
				{Name: "to", Type: "address"},
				{Name: "royaltyRecipient", Type: "address"},
				{Name: "royaltyBps", Type: "uint256"},
				{Name: "primarySaleRecipient", Type: "address"},
				{Name: "uri", Type: "string"},
				{Name: "price", Type: "uint256"},
				{Name: "currency", Type: "address"},
				{Name: "validityStartTimestamp", Type: "uint128"},
				{Name: "validityEndTimestamp", Type: "uint128"},
				{Name: "uid", Type: "bytes32"},
			},
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              domainName,
			Version:           domainVersion,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(g.chainID)),
			VerifyingContract: g.collection.Checksummed().String(),
		},
		Message: apitypes.TypedDataMessage{
			"to":                     p.To.String(),
			"royaltyRecipient":       p.RoyaltyRecipient.String(),
			"royaltyBps":             big.NewInt(p.RoyaltyBps).String(),
			"primarySaleRecipient":   p.PrimarySaleRecipient.String(),
			"uri":                    p.URI,
			"price":                  price.String(),
			"currency":               p.CurrencyAddress.String(),
			"validityStartTimestamp": big.NewInt(p.MintStartTime).String(),
			"validityEndTimestamp":   big.NewInt(p.MintEndTime).String(),
			"uid":                    uid,
		},
	}, nil
}

// randomUID fills 32 bytes from two random uuids
func randomUID() [32]byte {
	var uid [32]byte
	a, b := uuid.New(), uuid.New()
	copy(uid[:16], a[:])
	copy(uid[16:], b[:])
	return uid
}
