package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/signature"
	"github.com/mikeydub/go-storefront/util"
	"github.com/mikeydub/go-storefront/validate"
)

const nftsPath = "/api/get-nfts"

// ErrMintRejected is returned when the server refuses to authorize a mint
type ErrMintRejected struct {
	ID      int
	Message string
}

func (e ErrMintRejected) Error() string {
	return fmt.Sprintf("mint of nft %d rejected: %s", e.ID, e.Message)
}

// ErrInvalidAuthorization is returned when the server's authorization is missing required fields
type ErrInvalidAuthorization struct {
	Err error
}

func (e ErrInvalidAuthorization) Error() string {
	return fmt.Sprintf("invalid mint authorization: %s", e.Err)
}

func (e ErrInvalidAuthorization) Unwrap() error {
	return e.Err
}

// Client talks to the storefront server
type Client struct {
	baseURL    string
	httpClient *http.Client
	validator  *validator.Validate
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		validator:  validate.WithCustomValidators(),
	}
}

// GetNFTs fetches the catalog annotated with mint status
func (c *Client) GetNFTs(ctx context.Context) (persist.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+nftsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, util.BodyAsError(resp)
	}

	var items persist.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// RequestMint asks the server to authorize minting the item to the address
func (c *Client) RequestMint(ctx context.Context, id int, address persist.EthereumAddress) (signature.SignedPayload, error) {
	body, err := json.Marshal(map[string]interface{}{"id": id, "address": address})
	if err != nil {
		return signature.SignedPayload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+nftsPath, bytes.NewReader(body))
	if err != nil {
		return signature.SignedPayload{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return signature.SignedPayload{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return signature.SignedPayload{}, err
	}

	switch {
	case resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var rejected util.MessageResponse
		if err := json.Unmarshal(raw, &rejected); err != nil || rejected.Message == "" {
			rejected.Message = strings.TrimSpace(string(raw))
		}
		return signature.SignedPayload{}, ErrMintRejected{ID: id, Message: rejected.Message}
	default:
		var failed util.ErrorDetailResponse
		if err := json.Unmarshal(raw, &failed); err != nil || failed.Error.Message == "" {
			failed.Error.Message = strings.TrimSpace(string(raw))
		}
		return signature.SignedPayload{}, util.ErrHTTP{URL: req.URL.String(), Status: resp.StatusCode, Err: fmt.Errorf("%s", failed.Error.Message)}
	}

	var signed signature.SignedPayload
	if err := json.Unmarshal(raw, &signed); err != nil {
		return signature.SignedPayload{}, err
	}

	err = validate.ValidateFields(c.validator, validate.ValidationMap{
		"signature": {Value: signed.Signature, Tag: "required,signature"},
		"to":        {Value: signed.Payload.To.String(), Tag: "required,eth_addr"},
		"currency":  {Value: signed.Payload.CurrencyAddress.String(), Tag: "required,eth_addr"},
		"uid":       {Value: signed.Payload.UID, Tag: "required,hexadecimal"},
		"uri":       {Value: signed.Payload.URI, Tag: "required"},
	})
	if err != nil {
		return signature.SignedPayload{}, ErrInvalidAuthorization{Err: err}
	}

	return signed, nil
}
