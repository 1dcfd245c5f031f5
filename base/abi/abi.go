// Package abi holds the token standard interfaces the marketplace reads from chain and the
// decoders for their transfer logs.
package abi

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrUnexpectedTopics = errors.New("unexpected log topics")

func mustParse(name, def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("failed to parse " + name + " abi: " + err.Error())
	}
	return parsed
}

// indexedAddresses reads the address topics following the event id, n is the topic count the
// event must carry
func indexedAddresses(log *types.Log, n int) ([]common.Address, error) {
	if len(log.Topics) != n {
		return nil, ErrUnexpectedTopics
	}
	res := make([]common.Address, 0, n-1)
	for _, t := range log.Topics[1:] {
		res = append(res, common.BytesToAddress(t.Bytes()))
	}
	return res, nil
}

// ERC165 interface ids
var (
	Erc721InterfaceId  = [4]byte{0x80, 0xac, 0x58, 0xcd}
	Erc1155InterfaceId = [4]byte{0xd9, 0xb6, 0x7a, 0x26}
)
