package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
)

type alchemyTokenID string

func (t alchemyTokenID) ToTokenID() persist.TokenID {
	s := string(t)
	if strings.HasPrefix(s, "0x") {
		i, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
		if !ok {
			return ""
		}
		return persist.TokenIDFromBigInt(i)
	}
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return ""
	}
	return persist.TokenIDFromBigInt(i)
}

type alchemyToken struct {
	ID struct {
		TokenID alchemyTokenID `json:"tokenId"`
	} `json:"id"`
	Metadata json.RawMessage `json:"metadata"`
}

type getNFTsForCollectionResponse struct {
	NFTs      []alchemyToken `json:"nfts"`
	NextToken alchemyTokenID `json:"nextToken"`
}

// AlchemyProvider reads issued tokens from Alchemy's NFT API
type AlchemyProvider struct {
	alchemyAPIURL string
	httpClient    *http.Client
}

// NewAlchemyProvider creates a provider against the given NFT API base url
func NewAlchemyProvider(apiURL string, httpClient *http.Client) *AlchemyProvider {
	if apiURL == "" {
		panic("no alchemy api url set")
	}
	return &AlchemyProvider{
		alchemyAPIURL: strings.TrimSuffix(apiURL, "/"),
		httpClient:    httpClient,
	}
}

// GetTokensByCollection returns every token of the collection along with its metadata
func (d *AlchemyProvider) GetTokensByCollection(ctx context.Context, collection persist.EthereumAddress) ([]IssuedToken, error) {
	u := fmt.Sprintf("%s/getNFTsForCollection?contractAddress=%s&withMetadata=true&tokenUriTimeoutInMs=20000", d.alchemyAPIURL, collection)

	tokens := []IssuedToken{}
	pageKey := ""
	for {
		page, err := d.getNFTsPage(ctx, u, pageKey)
		if err != nil {
			return nil, err
		}

		for _, t := range page.NFTs {
			tokens = append(tokens, IssuedToken{
				TokenID:  t.ID.TokenID.ToTokenID(),
				Metadata: alchemyMetadataToMetadata(ctx, t),
			})
		}

		nextPageKey := string(page.NextToken)
		logger.For(ctx).Debugf("got %d tokens for %s (cur page: %s, next page %s)", len(page.NFTs), collection, pageKey, nextPageKey)

		if nextPageKey == "" || nextPageKey == pageKey {
			return tokens, nil
		}
		pageKey = nextPageKey
	}
}

func (d *AlchemyProvider) getNFTsPage(ctx context.Context, baseURL, pageKey string) (getNFTsForCollectionResponse, error) {
	var result getNFTsForCollectionResponse

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return result, err
	}

	if pageKey != "" {
		q := parsedURL.Query()
		q.Set("startToken", pageKey)
		parsedURL.RawQuery = q.Encode()
	}
	u := parsedURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return result, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		asString, _ := io.ReadAll(resp.Body)
		return result, fmt.Errorf("failed to get tokens from alchemy api: %s (err: %s) (url: %s)", resp.Status, asString, u)
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("failed to decode response: %w (%s)", err, u)
	}

	return result, nil
}

// alchemyMetadataToMetadata keeps the raw metadata document. Alchemy returns a string instead of
// an object when it could not parse the token's metadata, in which case the token has none.
func alchemyMetadataToMetadata(ctx context.Context, token alchemyToken) persist.TokenMetadata {
	if len(token.Metadata) == 0 {
		return persist.TokenMetadata{}
	}

	var metadata persist.TokenMetadata
	if err := json.Unmarshal(token.Metadata, &metadata); err != nil {
		logger.For(ctx).Debugf("token %s has unparseable metadata: %s", token.ID.TokenID, err)
		return persist.TokenMetadata{}
	}
	if metadata == nil {
		return persist.TokenMetadata{}
	}
	return metadata
}
