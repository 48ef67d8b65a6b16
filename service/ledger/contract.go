package ledger

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/sourcegraph/conc/pool"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/rpc"
	"github.com/mikeydub/go-storefront/service/rpc/ipfs"
	"github.com/mikeydub/go-storefront/util"
)

const defaultContractWorkers = 10

// ContractProvider reads issued tokens directly from the collection contract
type ContractProvider struct {
	caller     bind.ContractCaller
	ipfsClient *ipfs.Client
	httpClient *http.Client
	workers    int
}

func NewContractProvider(caller bind.ContractCaller, ipfsClient *ipfs.Client, httpClient *http.Client) *ContractProvider {
	return &ContractProvider{
		caller:     caller,
		ipfsClient: ipfsClient,
		httpClient: httpClient,
		workers:    defaultContractWorkers,
	}
}

// GetTokensByCollection walks token ids [0, nextTokenIdToMint) and resolves each token's metadata.
// Tokens whose uri or metadata can't be read are returned without metadata.
func (p *ContractProvider) GetTokensByCollection(ctx context.Context, collection persist.EthereumAddress) ([]IssuedToken, error) {
	defer util.Track(ctx, fmt.Sprintf("reading tokens of %s from contract", collection), time.Now())

	next, err := rpc.GetNextTokenIDToMint(ctx, collection, p.caller)
	if err != nil {
		return nil, err
	}

	if !next.IsInt64() {
		return nil, fmt.Errorf("collection %s reports an unreadable token count: %s", collection, next)
	}

	wp := pool.NewWithResults[IssuedToken]().WithContext(ctx).WithMaxGoroutines(p.workers)

	for i := int64(0); i < next.Int64(); i++ {
		tokenID := persist.TokenIDFromBigInt(big.NewInt(i))
		wp.Go(func(ctx context.Context) (IssuedToken, error) {
			return p.getToken(ctx, collection, tokenID), nil
		})
	}

	tokens, err := wp.Wait()
	if err != nil {
		return nil, err
	}

	if tokens == nil {
		tokens = []IssuedToken{}
	}
	return tokens, nil
}

func (p *ContractProvider) getToken(ctx context.Context, collection persist.EthereumAddress, tokenID persist.TokenID) IssuedToken {
	token := IssuedToken{TokenID: tokenID, Metadata: persist.TokenMetadata{}}

	turi, err := rpc.GetTokenURI(ctx, collection, tokenID, p.caller)
	if err != nil {
		logger.For(ctx).Warnf("failed to get uri for token %s: %s", tokenID, err)
		return token
	}

	metadata, err := rpc.GetMetadataFromURI(ctx, turi, p.ipfsClient, p.httpClient)
	if err != nil {
		logger.For(ctx).WithError(err).Warn(persist.ErrTokenMetadataNotFound{TokenID: tokenID, URI: turi}.Error())
		return token
	}

	token.Metadata = metadata
	return token
}
