package keys

import (
	"strings"
)

const (
	// PfxNonce prefixes sign-in nonces
	PfxNonce = "nonce"
	// PfxLock prefixes distributed per-key locks
	PfxLock = "lock"
	// PfxBid scopes the bid registry lock space
	PfxBid = "bid"
	// PfxTreasury scopes the treasury config lock
	PfxTreasury = "treasury"
	// PfxAccount scopes payment account locks
	PfxAccount = "account"
	// PfxAssetKind prefixes cached asset kinds
	PfxAssetKind = "assetKind"
	// PfxHealthCheck is written by the health probe
	PfxHealthCheck = "healthCheck"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// BidLockKey is the serialization key shared by every mutation of one (contract, tokenId)
func BidLockKey(contract, tokenId string) string {
	return RedisKey(PfxBid, strings.ToLower(contract), tokenId)
}

// AccountLockKey serializes deposits and withdrawals of one payment account
func AccountLockKey(address string) string {
	return RedisKey(PfxAccount, strings.ToLower(address))
}

// GetPrefix extracts the first two components of a key for metric tagging
func GetPrefix(key string) string {
	s := strings.Split(key, ":")
	switch {
	case len(s) > 2:
		return strings.Join(s[:2], ":")
	case len(s) > 1:
		return s[0]
	}
	return ""
}
