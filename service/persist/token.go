package persist

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mikeydub/go-storefront/util"
)

const (
	// URITypeIPFS represents an IPFS URI
	URITypeIPFS URIType = "ipfs"
	// URITypeHTTP represents an HTTP URI
	URITypeHTTP URIType = "http"
	// URITypeBase64JSON represents a base64 encoded JSON document
	URITypeBase64JSON URIType = "base64json"
	// URITypeJSON represents a JSON document
	URITypeJSON URIType = "json"
	// URITypeNone represents an empty URI
	URITypeNone URIType = "none"
	// URITypeUnknown represents an unknown URI type
	URITypeUnknown URIType = "unknown"
)

// CatalogIDAttribute is the metadata attribute that links a minted token back to its catalog item
const CatalogIDAttribute = "id"

// ZeroAddress is the all-zero Ethereum address
const ZeroAddress EthereumAddress = "0x0000000000000000000000000000000000000000"

// NativeCurrencyAddress is the sentinel address the collection contract uses for the chain's native currency
const NativeCurrencyAddress EthereumAddress = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// EthereumAddress represents an Ethereum address
type EthereumAddress string

// URIType represents the type of a URI
type URIType string

// TokenID represents the ID of an Ethereum token in hexadecimal
type TokenID string

// TokenURI represents the URI for an Ethereum token
type TokenURI string

// TokenMetadata represents the JSON metadata for a token
type TokenMetadata map[string]interface{}

func (a EthereumAddress) String() string {
	return string(a)
}

// Address returns the address as a go-ethereum address
func (a EthereumAddress) Address() common.Address {
	return common.HexToAddress(a.String())
}

// IsValid returns true if the address is a well formed hex address
func (a EthereumAddress) IsValid() bool {
	return common.IsHexAddress(a.String())
}

// Checksummed returns the EIP-55 form of the address
func (a EthereumAddress) Checksummed() EthereumAddress {
	return EthereumAddress(a.Address().Hex())
}

func (id TokenID) String() string {
	return strings.ToLower(util.RemoveLeftPaddedZeros(string(id)))
}

// BigInt returns the token ID as a big.Int
func (id TokenID) BigInt() *big.Int {
	i, ok := new(big.Int).SetString(id.String(), 16)
	if !ok {
		return big.NewInt(0)
	}
	return i
}

// Base10String returns the token ID as a base 10 string
func (id TokenID) Base10String() string {
	return id.BigInt().String()
}

// TokenIDFromBigInt converts a big.Int into a TokenID
func TokenIDFromBigInt(i *big.Int) TokenID {
	return TokenID(i.Text(16))
}

func (uri TokenURI) String() string {
	asString := string(uri)
	if strings.HasPrefix(asString, "http") || strings.HasPrefix(asString, "ipfs") {
		unescaped, err := url.QueryUnescape(asString)
		if err == nil && unescaped != asString {
			return unescaped
		}
	}
	return asString
}

// Type returns the type of the token URI
func (uri TokenURI) Type() URIType {
	asString := strings.TrimSpace(uri.String())
	switch {
	case strings.HasPrefix(asString, "ipfs"), strings.HasPrefix(asString, "Qm"):
		return URITypeIPFS
	case strings.HasPrefix(asString, "data:application/json;base64,"):
		return URITypeBase64JSON
	case strings.HasPrefix(asString, "http"):
		return URITypeHTTP
	case strings.HasPrefix(asString, "{"), strings.HasPrefix(asString, "data:application/json"):
		return URITypeJSON
	case asString == "":
		return URITypeNone
	default:
		return URITypeUnknown
	}
}

// CatalogID returns the catalog id embedded in the token's attributes. Attributes may be an
// object ({"id": 2}) or a list of OpenSea style traits ([{"trait_type": "id", "value": 2}]).
func (m TokenMetadata) CatalogID() (int, bool) {
	attrs, ok := m["attributes"]
	if !ok || attrs == nil {
		return 0, false
	}

	switch it := attrs.(type) {
	case map[string]interface{}:
		return attributeToInt(it[CatalogIDAttribute])
	case []interface{}:
		for _, a := range it {
			trait, ok := a.(map[string]interface{})
			if !ok {
				continue
			}
			if name, _ := trait["trait_type"].(string); name == CatalogIDAttribute {
				return attributeToInt(trait["value"])
			}
		}
	}

	return 0, false
}

func attributeToInt(v interface{}) (int, bool) {
	switch it := v.(type) {
	case float64:
		if it != math.Trunc(it) {
			return 0, false
		}
		return int(it), true
	case json.Number:
		i, err := it.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case int:
		return it, true
	case int64:
		return int(it), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(it))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// ErrTokenMetadataNotFound is returned when a token has no retrievable metadata
type ErrTokenMetadataNotFound struct {
	TokenID TokenID
	URI     TokenURI
}

func (e ErrTokenMetadataNotFound) Error() string {
	return fmt.Sprintf("no metadata found for token %s (uri: %s)", e.TokenID, e.URI)
}
