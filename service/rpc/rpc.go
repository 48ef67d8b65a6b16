package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mikeydub/go-storefront/contracts"
	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/rpc/ipfs"
	"github.com/mikeydub/go-storefront/util"
	"github.com/sirupsen/logrus"
)

func init() {
	env.RegisterValidation("CONTRACT_INTERACTION_URL", "required")
}

// NewEthClient returns an ethclient.Client for the configured node
func NewEthClient(ctx context.Context) *ethclient.Client {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, env.GetString(ctx, "CONTRACT_INTERACTION_URL"))
	if err != nil {
		panic(err)
	}
	return client
}

// GetMetadataFromURI parses and returns the NFT metadata for a given token URI
func GetMetadataFromURI(ctx context.Context, turi persist.TokenURI, ipfsClient *ipfs.Client, httpClient *http.Client) (persist.TokenMetadata, error) {
	bs, err := GetDataFromURI(ctx, turi, ipfsClient, httpClient)
	if err != nil {
		return persist.TokenMetadata{}, err
	}

	// remove BOM https://en.wikipedia.org/wiki/Byte_order_mark
	bs = bytes.TrimPrefix(bs, []byte("\xef\xbb\xbf"))

	var metadata persist.TokenMetadata
	if err := json.Unmarshal(bs, &metadata); err != nil {
		return persist.TokenMetadata{}, err
	}

	return metadata, nil
}

// GetDataFromURI calls URI and returns the data
func GetDataFromURI(ctx context.Context, turi persist.TokenURI, ipfsClient *ipfs.Client, httpClient *http.Client) ([]byte, error) {
	asString := turi.String()

	switch turi.Type() {
	case persist.URITypeBase64JSON:
		b64data := asString[strings.IndexByte(asString, ',')+1:]
		decoded, err := util.Base64Decode(b64data, base64.StdEncoding, base64.RawStdEncoding)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 data: %s", err)
		}
		return decoded, nil
	case persist.URITypeIPFS:
		if ipfsClient == nil {
			return nil, fmt.Errorf("no ipfs client configured to read %s", asString)
		}
		it, err := ipfsClient.GetResponse(ctx, asString)
		if err != nil {
			return nil, fmt.Errorf("error getting data from ipfs: %s", err)
		}
		defer it.Close()

		bs, err := io.ReadAll(it)
		if err != nil {
			return nil, fmt.Errorf("error reading data from ipfs: %s", err)
		}
		return bs, nil
	case persist.URITypeHTTP:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, asString, nil)
		if err != nil {
			return nil, err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error getting data from http: %s", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode > 299 || resp.StatusCode < 200 {
			return nil, util.ErrHTTP{Status: resp.StatusCode, URL: asString}
		}

		buf := &bytes.Buffer{}
		if _, err := io.Copy(buf, resp.Body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case persist.URITypeJSON:
		asString = strings.TrimPrefix(asString, "data:application/json;utf8,")
		asString = strings.TrimPrefix(asString, "data:application/json,")
		return []byte(asString), nil
	default:
		return nil, fmt.Errorf("unknown token URI type: %s", turi.Type())
	}
}

// GetTokenURI returns the metadata URI for a token of the collection
func GetTokenURI(ctx context.Context, collection persist.EthereumAddress, tokenID persist.TokenID, caller bind.ContractCaller) (persist.TokenURI, error) {
	instance, err := contracts.NewTokenERC721Caller(collection.Address(), caller)
	if err != nil {
		return "", err
	}

	logger.For(ctx).WithFields(logrus.Fields{"tokenID": tokenID.String(), "collection": collection.String()}).Debug("fetching token uri")

	turi, err := instance.TokenURI(&bind.CallOpts{Context: ctx}, tokenID.BigInt())
	if err != nil {
		return "", err
	}

	return persist.TokenURI(strings.ReplaceAll(turi, "\x00", "")), nil
}

// GetNextTokenIDToMint returns the id the collection will assign to the next mint, which is also the number of issued tokens
func GetNextTokenIDToMint(ctx context.Context, collection persist.EthereumAddress, caller bind.ContractCaller) (*big.Int, error) {
	instance, err := contracts.NewTokenERC721Caller(collection.Address(), caller)
	if err != nil {
		return nil, err
	}
	return instance.NextTokenIdToMint(&bind.CallOpts{Context: ctx})
}
