package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	bCtx "github.com/x-xyz/treemarket/base/ctx"
	baseeth "github.com/x-xyz/treemarket/base/ethereum"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
)

type ClientCfg struct {
	RpcUrl        string
	MaxConcurrent int
}

// Client calls view functions of one chain
type Client interface {
	Call(c bCtx.Ctx, addr common.Address, blk *big.Int, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error)
}

type clientImpl struct {
	eth domain.EthClientRepo
}

// Dial connects to the rpc and wraps it in a throttled client
func Dial(c bCtx.Ctx, cfg *ClientCfg) (*baseeth.ThrottledClient, error) {
	client, err := ethclient.DialContext(c, cfg.RpcUrl)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "url": cfg.RpcUrl}).Error("failed to dial rpc")
		return nil, err
	}
	n := cfg.MaxConcurrent
	if n <= 0 {
		n = 8
	}
	return baseeth.NewThrottledClient(client, n), nil
}

func NewClient(eth domain.EthClientRepo) Client {
	return &clientImpl{eth: eth}
}

func (im *clientImpl) Call(c bCtx.Ctx, addr common.Address, blk *big.Int, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	data, err := _abi.Pack(method, params...)
	if err != nil {
		c.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	res, err := im.eth.CallContract(c, msg, blk)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "addr": addr, "method": method}).Warn("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "addr": addr, "method": method}).Warn("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}
