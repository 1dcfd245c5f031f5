package abi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ERC721TokenABI = mustParse("erc721", `[
  {"type":"event","name":"Transfer","inputs":[
    {"type":"address","name":"from","indexed":true},
    {"type":"address","name":"to","indexed":true},
    {"type":"uint256","name":"tokenId","indexed":true}]},
  {"type":"event","name":"ApprovalForAll","inputs":[
    {"type":"address","name":"owner","indexed":true},
    {"type":"address","name":"operator","indexed":true},
    {"type":"bool","name":"approved"}]},
  {"type":"function","name":"supportsInterface","stateMutability":"view",
    "inputs":[{"type":"bytes4","name":"interfaceId"}],"outputs":[{"type":"bool"}]},
  {"type":"function","name":"ownerOf","stateMutability":"view",
    "inputs":[{"type":"uint256","name":"tokenId"}],"outputs":[{"type":"address"}]},
  {"type":"function","name":"isApprovedForAll","stateMutability":"view",
    "inputs":[{"type":"address","name":"owner"},{"type":"address","name":"operator"}],"outputs":[{"type":"bool"}]}
]`)

type Erc721TransferLog struct {
	From    common.Address
	To      common.Address
	TokenId *big.Int
}

// ToErc721TransferLog decodes a Transfer log. ERC20 shares the event signature but indexes
// only two topics, so such logs are rejected.
func ToErc721TransferLog(log *types.Log) (*Erc721TransferLog, error) {
	addrs, err := indexedAddresses(log, 4)
	if err != nil {
		return nil, err
	}
	return &Erc721TransferLog{
		From:    addrs[0],
		To:      addrs[1],
		TokenId: log.Topics[3].Big(),
	}, nil
}
