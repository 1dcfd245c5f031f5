package tracker

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	baseabi "github.com/x-xyz/treemarket/base/abi"
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
)

var (
	erc721TransferTopic = baseabi.ERC721TokenABI.Events["Transfer"].ID
	erc1155SingleTopic  = baseabi.ERC1155TokenABI.Events["TransferSingle"].ID
	erc1155BatchTopic   = baseabi.ERC1155TokenABI.Events["TransferBatch"].ID
)

// DepositHandler credits tokens sent to the custody address to their sender
type DepositHandler struct {
	custody domain.Address
	assets  asset.UseCase
}

func NewDepositHandler(custody domain.Address, assets asset.UseCase) *DepositHandler {
	return &DepositHandler{custody: custody.ToLower(), assets: assets}
}

func (h *DepositHandler) GetFilterTopics() [][]common.Hash {
	return [][]common.Hash{{erc721TransferTopic, erc1155SingleTopic, erc1155BatchTopic}}
}

type deposit struct {
	contract domain.Address
	from     domain.Address
	to       domain.Address
	tokenId  *big.Int
	amount   *big.Int
}

func decodeDeposits(l *types.Log) ([]deposit, error) {
	contract := toDomainAddress(l.Address)
	switch l.Topics[0] {
	case erc721TransferTopic:
		ev, err := baseabi.ToErc721TransferLog(l)
		if err != nil {
			return nil, err
		}
		return []deposit{{contract, toDomainAddress(ev.From), toDomainAddress(ev.To), ev.TokenId, big.NewInt(1)}}, nil
	case erc1155SingleTopic:
		ev, err := baseabi.ToErc1155TransferSingleLog(l)
		if err != nil {
			return nil, err
		}
		return []deposit{{contract, toDomainAddress(ev.From), toDomainAddress(ev.To), ev.Id, ev.Value}}, nil
	case erc1155BatchTopic:
		evs, err := baseabi.ToErc1155TransferBatchLogs(l)
		if err != nil {
			return nil, err
		}
		res := make([]deposit, 0, len(evs))
		for _, ev := range evs {
			res = append(res, deposit{contract, toDomainAddress(ev.From), toDomainAddress(ev.To), ev.Id, ev.Value})
		}
		return res, nil
	}
	return nil, nil
}

func (h *DepositHandler) ProcessEvents(ctx bCtx.Ctx, logs []types.Log) error {
	for i := range logs {
		l := &logs[i]
		if l.Removed || len(l.Topics) == 0 {
			continue
		}
		deposits, err := decodeDeposits(l)
		if errors.Is(err, baseabi.ErrUnexpectedTopics) {
			// erc20 transfers share the signature
			continue
		} else if err != nil {
			ctx.WithFields(log.Fields{"err": err, "txHash": txHashOf(l.TxHash)}).Warn("failed to decode log")
			continue
		}

		for _, d := range deposits {
			if !d.to.Equals(h.custody) || d.amount.Sign() <= 0 {
				continue
			}
			key := domain.NewAssetKey(d.contract, domain.TokenId(d.tokenId.String()))
			fields := log.Fields{
				"key":    key,
				"from":   d.from,
				"amount": d.amount.String(),
				"txHash": txHashOf(l.TxHash),
			}
			if err := h.assets.Deposit(ctx, key, d.from, d.amount); errors.Is(err, domain.ErrUnsupportedAsset) {
				ctx.WithFields(fields).Warn("skip deposit of unsupported asset")
				continue
			} else if err != nil {
				ctx.WithFields(fields).WithField("err", err).Error("assets.Deposit failed")
				return err
			}
			ctx.WithFields(fields).Info("deposit credited")
		}
	}
	return nil
}
