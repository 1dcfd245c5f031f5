package contract

import (
	baseabi "github.com/x-xyz/treemarket/base/abi"
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/service/chain"
)

type Erc1155Contract interface {
	Supports1155Interface(ctx bCtx.Ctx, addr domain.Address) (bool, error)
}

type Erc1155 struct {
	chain chain.Client
}

func NewErc1155(chainService chain.Client) *Erc1155 {
	return &Erc1155{chain: chainService}
}

func (e *Erc1155) Supports1155Interface(ctx bCtx.Ctx, addr domain.Address) (bool, error) {
	return supportsInterface(ctx, e.chain, baseabi.ERC1155TokenABI, addr, baseabi.Erc1155InterfaceId)
}
