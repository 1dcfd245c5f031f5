package abi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ERC1155TokenABI = mustParse("erc1155", `[
  {"type":"event","name":"TransferSingle","inputs":[
    {"type":"address","name":"operator","indexed":true},
    {"type":"address","name":"from","indexed":true},
    {"type":"address","name":"to","indexed":true},
    {"type":"uint256","name":"id"},
    {"type":"uint256","name":"value"}]},
  {"type":"event","name":"TransferBatch","inputs":[
    {"type":"address","name":"operator","indexed":true},
    {"type":"address","name":"from","indexed":true},
    {"type":"address","name":"to","indexed":true},
    {"type":"uint256[]","name":"ids"},
    {"type":"uint256[]","name":"values"}]},
  {"type":"function","name":"supportsInterface","stateMutability":"view",
    "inputs":[{"type":"bytes4","name":"interfaceId"}],"outputs":[{"type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
    "inputs":[{"type":"address","name":"account"},{"type":"uint256","name":"id"}],"outputs":[{"type":"uint256"}]}
]`)

// Erc1155Transfer is a TransferSingle log, or one entry of a TransferBatch
type Erc1155Transfer struct {
	Operator common.Address
	From     common.Address
	To       common.Address
	Id       *big.Int
	Value    *big.Int
}

func ToErc1155TransferSingleLog(log *types.Log) (*Erc1155Transfer, error) {
	addrs, err := indexedAddresses(log, 4)
	if err != nil {
		return nil, err
	}
	out, err := ERC1155TokenABI.Unpack("TransferSingle", log.Data)
	if err != nil {
		return nil, err
	}
	return &Erc1155Transfer{
		Operator: addrs[0],
		From:     addrs[1],
		To:       addrs[2],
		Id:       out[0].(*big.Int),
		Value:    out[1].(*big.Int),
	}, nil
}

// ToErc1155TransferBatchLogs flattens a TransferBatch log into one transfer per id
func ToErc1155TransferBatchLogs(log *types.Log) ([]*Erc1155Transfer, error) {
	addrs, err := indexedAddresses(log, 4)
	if err != nil {
		return nil, err
	}
	out, err := ERC1155TokenABI.Unpack("TransferBatch", log.Data)
	if err != nil {
		return nil, err
	}
	ids, values := out[0].([]*big.Int), out[1].([]*big.Int)
	if len(ids) != len(values) {
		return nil, ErrUnexpectedTopics
	}
	res := make([]*Erc1155Transfer, 0, len(ids))
	for i := range ids {
		res = append(res, &Erc1155Transfer{
			Operator: addrs[0],
			From:     addrs[1],
			To:       addrs[2],
			Id:       ids[i],
			Value:    values[i],
		})
	}
	return res, nil
}
