package contract

import (
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/x-xyz/treemarket/base/abi"
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/service/chain"
)

// Erc1271Contract verifies signatures of contract wallets
type Erc1271Contract interface {
	IsValidSignature(ctx bCtx.Ctx, addr domain.Address, hash common.Hash, signature []byte) (bool, error)
}

type Erc1271 struct {
	chain chain.Client
}

func NewErc1271(chainService chain.Client) Erc1271Contract {
	return &Erc1271{chain: chainService}
}

func (e *Erc1271) IsValidSignature(ctx bCtx.Ctx, addr domain.Address, hash common.Hash, signature []byte) (bool, error) {
	unpacked, err := e.chain.Call(ctx, common.HexToAddress(string(addr)), nil, baseabi.ERC1271ABI, "isValidSignature", hash, signature)
	if err != nil {
		return false, err
	}
	return unpacked[0].([4]byte) == baseabi.Erc1271MagicValue, nil
}
