package storefront

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mikeydub/go-storefront/contracts"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/signature"
)

// Wallet submits signed mint requests on behalf of a buyer
type Wallet interface {
	Address() persist.EthereumAddress
	ChainID(ctx context.Context) (*big.Int, error)
	MintWithSignature(ctx context.Context, payload signature.Payload, sig string) (string, error)
}

// ErrTransactionReverted is returned when a mint transaction is mined but fails
type ErrTransactionReverted struct {
	Hash string
}

func (e ErrTransactionReverted) Error() string {
	return fmt.Sprintf("mint transaction %s reverted", e.Hash)
}

// chainBackend is the part of an ethclient a KeyedWallet uses
type chainBackend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// KeyedWallet signs transactions with a local private key
type KeyedWallet struct {
	key        *ecdsa.PrivateKey
	backend    chainBackend
	collection persist.EthereumAddress
}

// DialKeyedWallet connects to rpcURL and returns a wallet for the key
func DialKeyedWallet(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey, collection persist.EthereumAddress) (*KeyedWallet, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return NewKeyedWallet(client, key, collection), nil
}

func NewKeyedWallet(backend chainBackend, key *ecdsa.PrivateKey, collection persist.EthereumAddress) *KeyedWallet {
	return &KeyedWallet{key: key, backend: backend, collection: collection}
}

func (w *KeyedWallet) Address() persist.EthereumAddress {
	return persist.EthereumAddress(crypto.PubkeyToAddress(w.key.PublicKey).Hex())
}

func (w *KeyedWallet) ChainID(ctx context.Context) (*big.Int, error) {
	return w.backend.ChainID(ctx)
}

// MintWithSignature submits the authorization to the collection, paying the price as the
// transaction value, and waits for the transaction to be mined
func (w *KeyedWallet) MintWithSignature(ctx context.Context, payload signature.Payload, sig string) (string, error) {
	req, err := payload.MintRequest()
	if err != nil {
		return "", err
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil {
		return "", fmt.Errorf("invalid signature: %w", err)
	}

	chainID, err := w.backend.ChainID(ctx)
	if err != nil {
		return "", err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(w.key, chainID)
	if err != nil {
		return "", err
	}
	opts.Context = ctx
	opts.Value = req.Price

	collection, err := contracts.NewTokenERC721Transactor(w.collection.Address(), w.backend)
	if err != nil {
		return "", err
	}

	tx, err := collection.MintWithSignature(opts, req, sigBytes)
	if err != nil {
		return "", err
	}

	logger.For(ctx).Infof("submitted mint transaction %s", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, w.backend, tx)
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", ErrTransactionReverted{Hash: tx.Hash().Hex()}
	}

	return tx.Hash().Hex(), nil
}
