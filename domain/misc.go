package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"
)

var Big10000 = big.NewInt(10000)

type ChainId int32

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsValid() bool {
	return common.IsHexAddress(string(a)) && !a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

// token ids are uint256 on chain
const tokenIdBits = 256

func (i TokenId) parse() (*big.Int, bool) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok || id.Sign() < 0 || id.BitLen() > tokenIdBits {
		return nil, false
	}
	return id, true
}

func (i TokenId) IsValid() bool {
	_, ok := i.parse()
	return ok
}

// Canonical drops signs and leading zeros so "01" and "+1" name token 1. Invalid ids come back unchanged.
func (i TokenId) Canonical() TokenId {
	id, ok := i.parse()
	if !ok {
		return i
	}
	return TokenId(id.String())
}

// AssetKey identifies one token of one asset contract
type AssetKey struct {
	Contract Address `bson:"contract" json:"contract"`
	TokenId  TokenId `bson:"tokenId" json:"tokenId"`
}

func NewAssetKey(contract Address, tokenId TokenId) AssetKey {
	return AssetKey{Contract: contract.ToLower(), TokenId: tokenId.Canonical()}
}

func (k AssetKey) String() string {
	return k.Contract.ToLowerStr() + ":" + k.TokenId.String()
}

func (k AssetKey) Validate() error {
	if !k.Contract.IsValid() {
		return ErrInvalidAddress
	}
	if !k.TokenId.IsValid() {
		return xerrors.Errorf("%w: token id %q", ErrBadParamInput, k.TokenId)
	}
	if k.TokenId.Canonical() != k.TokenId {
		return xerrors.Errorf("%w: token id %q is not canonical", ErrBadParamInput, k.TokenId)
	}
	return nil
}

// ParseAmount parses a base-10 integer amount. Negative values are rejected.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, xerrors.Errorf("%w: %q", ErrInvalidNumberFormat, s)
	}
	if n.Sign() < 0 {
		return nil, xerrors.Errorf("%w: negative amount %s", ErrInvalidAmount, s)
	}
	return n, nil
}

// MustParseAmount panics on malformed input and is meant for constants and tests
func MustParseAmount(s string) *big.Int {
	n, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return n
}

// AmountString renders nil as "0"
func AmountString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

// Bps returns amount * bps / 10000 rounded down
func Bps(amount *big.Int, bps uint32) *big.Int {
	res := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return res.Quo(res, Big10000)
}
