package abi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestToErc721TransferLog(t *testing.T) {
	req := require.New(t)
	from := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	to := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	log := &types.Log{
		Topics: []common.Hash{
			ERC721TokenABI.Events["Transfer"].ID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(42)),
		},
	}
	res, err := ToErc721TransferLog(log)
	req.NoError(err)
	req.Equal(from, res.From)
	req.Equal(to, res.To)
	req.Equal(int64(42), res.TokenId.Int64())

	log.Topics = log.Topics[:3]
	_, err = ToErc721TransferLog(log)
	req.ErrorIs(err, ErrUnexpectedTopics)
}

func TestToErc1155TransferSingleLog(t *testing.T) {
	req := require.New(t)
	operator := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	from := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	to := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	ev := ERC1155TokenABI.Events["TransferSingle"]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(7), big.NewInt(3))
	req.NoError(err)

	res, err := ToErc1155TransferSingleLog(&types.Log{
		Topics: []common.Hash{
			ev.ID,
			common.BytesToHash(operator.Bytes()),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	})
	req.NoError(err)
	req.Equal(operator, res.Operator)
	req.Equal(to, res.To)
	req.Equal(int64(7), res.Id.Int64())
	req.Equal(int64(3), res.Value.Int64())
}

func TestToErc1155TransferBatchLogs(t *testing.T) {
	req := require.New(t)
	from := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	to := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	ev := ERC1155TokenABI.Events["TransferBatch"]
	data, err := ev.Inputs.NonIndexed().Pack([]*big.Int{big.NewInt(1), big.NewInt(2)}, []*big.Int{big.NewInt(10), big.NewInt(20)})
	req.NoError(err)

	res, err := ToErc1155TransferBatchLogs(&types.Log{
		Topics: []common.Hash{
			ev.ID,
			common.BytesToHash(to.Bytes()),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	})
	req.NoError(err)
	req.Len(res, 2)
	req.Equal(from, res[1].From)
	req.Equal(int64(2), res[1].Id.Int64())
	req.Equal(int64(20), res[1].Value.Int64())
}

func TestErc165Ids(t *testing.T) {
	req := require.New(t)
	req.Equal(common.Hex2Bytes("80ac58cd"), Erc721InterfaceId[:])
	req.Equal(common.Hex2Bytes("d9b67a26"), Erc1155InterfaceId[:])
}
