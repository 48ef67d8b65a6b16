package util

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// RemoveLeftPaddedZeros is a function that removes the left padded zeros from a large hex string
func RemoveLeftPaddedZeros(hex string) string {

	// if string is just 0x, return 0x
	if hex == "0x" {
		return "0"
	}

	hex = strings.TrimPrefix(hex, "0x")

	// if string is just a bunch of zeros after 0x, return 0
	if strings.ReplaceAll(hex, "0", "") == "" {
		return "0"
	}

	for i := 0; i < len(hex); i++ {
		if hex[i] != '0' {
			return hex[i:]
		}
	}
	return hex
}

func Base64Decode(s string, encodings ...*base64.Encoding) ([]byte, error) {
	var lastError error
	for _, encoding := range encodings {
		bs, err := encoding.DecodeString(s)
		if err == nil {
			return bs, nil
		}
		lastError = err
	}
	return nil, lastError
}

// EtherToWei converts a decimal amount of the base currency to wei without going through float math.
// Amounts with more than 18 decimal places or negative amounts are rejected.
func EtherToWei(amount float64) (*big.Int, error) {
	asString := strconv.FormatFloat(amount, 'f', -1, 64)

	r, ok := new(big.Rat).SetString(asString)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", asString)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %s", asString)
	}

	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %s has more precision than wei", asString)
	}

	return new(big.Int).Set(r.Num()), nil
}

// WeiToEther converts an amount in wei to its decimal string in the base currency
func WeiToEther(wei *big.Int) string {
	r := new(big.Rat).SetFrac(wei, weiPerEther)
	s := strings.TrimRight(strings.TrimRight(r.FloatString(18), "0"), ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
