package tracker

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/treemarket/domain"
)

// toDomainAddress keeps addresses lower-cased the way the custody book stores them
func toDomainAddress(a common.Address) domain.Address {
	return domain.Address(a.Hex()).ToLower()
}

func txHashOf(h common.Hash) string {
	return h.Hex()
}
