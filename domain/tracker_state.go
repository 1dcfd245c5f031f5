package domain

import (
	"github.com/x-xyz/treemarket/base/ctx"
)

const DepositTrackerTag = "custody-deposit"

// TrackerState records how far the deposit tracker has read one chain
type TrackerState struct {
	ChainId            ChainId `bson:"chainId"`
	Custody            Address `bson:"custody"`
	Tag                string  `bson:"tag"`
	LastBlockProcessed uint64  `bson:"lastBlockProcessed"`
}

func (s *TrackerState) ToId() *TrackerStateId {
	return &TrackerStateId{
		ChainId: s.ChainId,
		Custody: s.Custody,
		Tag:     s.Tag,
	}
}

type TrackerStateId struct {
	ChainId ChainId `bson:"chainId"`
	Custody Address `bson:"custody"`
	Tag     string  `bson:"tag"`
}

type TrackerStateRepo interface {
	Get(ctx.Ctx, *TrackerStateId) (*TrackerState, error)
	Upsert(ctx.Ctx, *TrackerState) error
}

type TrackerStateUseCase interface {
	// Get returns a zero state at fromBlock when none was stored yet
	Get(c ctx.Ctx, id *TrackerStateId, fromBlock uint64) (*TrackerState, error)
	Advance(c ctx.Ctx, id *TrackerStateId, block uint64) error
}
