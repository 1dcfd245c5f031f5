package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/x-xyz/treemarket/base/abi"
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/service/chain"
)

type Erc721Contract interface {
	Supports721Interface(ctx bCtx.Ctx, addr domain.Address) (bool, error)
	OwnerOf(ctx bCtx.Ctx, addr domain.Address, tokenId *big.Int) (domain.Address, error)
}

type Erc721 struct {
	chain chain.Client
}

func NewErc721(chainService chain.Client) *Erc721 {
	return &Erc721{chain: chainService}
}

// supportsInterface runs the ERC165 probe through the abi of the standard being asked about
func supportsInterface(ctx bCtx.Ctx, c chain.Client, abi ethabi.ABI, addr domain.Address, id [4]byte) (bool, error) {
	unpacked, err := c.Call(ctx, common.HexToAddress(string(addr)), nil, abi, "supportsInterface", id)
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) Supports721Interface(ctx bCtx.Ctx, addr domain.Address) (bool, error) {
	return supportsInterface(ctx, e.chain, baseabi.ERC721TokenABI, addr, baseabi.Erc721InterfaceId)
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, addr domain.Address, tokenId *big.Int) (domain.Address, error) {
	unpacked, err := e.chain.Call(ctx, common.HexToAddress(string(addr)), nil, baseabi.ERC721TokenABI, "ownerOf", tokenId)
	if err != nil {
		return "", err
	}
	return domain.Address(unpacked[0].(common.Address).Hex()).ToLower(), nil
}
