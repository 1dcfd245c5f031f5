package tracker

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/backoff"
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/metrics"
	"github.com/x-xyz/treemarket/domain"
)

const (
	TooManyLogsTimeout   = 30 * time.Second
	defaultPollInterval  = 10 * time.Second
	defaultMaxBlockRange = 2000
)

type EventHandler interface {
	GetFilterTopics() [][]common.Hash
	// ProcessEvents receives the logs of one block range in chain order
	ProcessEvents(bCtx.Ctx, []types.Log) error
}

type EventTrackerCfg struct {
	ChainId             domain.ChainId
	Client              domain.EthClientRepo
	TrackerStateUseCase domain.TrackerStateUseCase
	// Contracts limits the filter. Empty means logs of every address.
	Contracts []common.Address
	// Custody and TrackerTag identify the stored progress
	Custody        domain.Address
	TrackerTag     string
	EventHandl     EventHandler
	FromBlock      uint64
	FollowDistance uint64
	PollInterval   time.Duration
	MaxBlockRange  uint64
}

type EventTracker struct {
	chainId        domain.ChainId
	client         domain.EthClientRepo
	states         domain.TrackerStateUseCase
	stateId        *domain.TrackerStateId
	eventHandler   EventHandler
	filter         ethereum.FilterQuery
	fromBlock      uint64
	followDistance uint64
	pollInterval   time.Duration
	maxBlockRange  uint64
	lastProcessed  uint64
	met            metrics.Service
}

func NewEventTracker(cfg *EventTrackerCfg) *EventTracker {
	t := &EventTracker{
		chainId: cfg.ChainId,
		client:  cfg.Client,
		states:  cfg.TrackerStateUseCase,
		stateId: &domain.TrackerStateId{
			ChainId: cfg.ChainId,
			Custody: cfg.Custody.ToLower(),
			Tag:     cfg.TrackerTag,
		},
		eventHandler: cfg.EventHandl,
		filter: ethereum.FilterQuery{
			Addresses: cfg.Contracts,
			Topics:    cfg.EventHandl.GetFilterTopics(),
		},
		fromBlock:      cfg.FromBlock,
		followDistance: cfg.FollowDistance,
		pollInterval:   cfg.PollInterval,
		maxBlockRange:  cfg.MaxBlockRange,
		met:            metrics.New("tracker"),
	}
	if t.pollInterval <= 0 {
		t.pollInterval = defaultPollInterval
	}
	if t.maxBlockRange == 0 {
		t.maxBlockRange = defaultMaxBlockRange
	}
	return t
}

// Run follows the chain until ctx is done. Rpc failures are retried with backoff; a handler
// failure stops the tracker so no log is skipped.
func (f *EventTracker) Run(ctx bCtx.Ctx) error {
	state, err := f.states.Get(ctx, f.stateId, f.fromBlock)
	if err != nil {
		ctx.WithField("err", err).Error("trackerStateUseCase.Get failed")
		return err
	}
	f.lastProcessed = state.LastBlockProcessed
	ctx.WithFields(log.Fields{
		"chainId": f.chainId,
		"custody": f.stateId.Custody,
		"from":    f.lastProcessed,
	}).Info("tracker started")

	b := backoff.NewExponential(time.Second, time.Minute)
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()
	for {
		err := f.poll(ctx)
		var handlerErr *handlerError
		switch {
		case err == nil:
			b.Reset()
		case xerrors.As(err, &handlerErr):
			return err
		default:
			ctx.WithFields(log.Fields{"err": err, "chainId": f.chainId}).Warn("poll failed, backing off")
			if err := b.Backoff(ctx); err != nil {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type handlerError struct {
	err error
}

func (e *handlerError) Error() string {
	return fmt.Sprintf("failed to process events: %v", e.err)
}

func (e *handlerError) Unwrap() error {
	return e.err
}

// poll processes every confirmed block past the stored progress
func (f *EventTracker) poll(ctx bCtx.Ctx) error {
	current, err := f.client.BlockNumber(ctx)
	if err != nil {
		return err
	}
	f.met.BumpAvg("blockchain.lastBlock", float64(current), "chainId", fmt.Sprint(f.chainId))
	if current < f.followDistance {
		return nil
	}
	target := current - f.followDistance

	for f.lastProcessed < target {
		r := nextRange(f.lastProcessed, target, f.maxBlockRange)
		if err := f.processBlkRange(ctx, r); err != nil {
			return err
		}
		if err := f.states.Advance(ctx, f.stateId, r.to); err != nil {
			ctx.WithField("err", err).Error("trackerStateUseCase.Advance failed")
			return err
		}
		f.lastProcessed = r.to
		f.met.BumpAvg("tracker.lastBlock", float64(r.to), "chainId", fmt.Sprint(f.chainId))
	}
	return nil
}

// processBlkRange hands the logs of r to the handler in chain order. A range the node
// refuses is halved until a single block still fails.
func (f *EventTracker) processBlkRange(ctx bCtx.Ctx, r blockRange) error {
	pending := []blockRange{r}
	for len(pending) > 0 {
		r := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		tCtx, cancel := bCtx.WithTimeout(ctx, TooManyLogsTimeout)
		logs, err := f.client.FilterLogs(tCtx, r.query(f.filter))
		cancel()
		if err != nil {
			if r.single() {
				ctx.WithFields(log.Fields{
					"err":     err,
					"block":   r.from,
					"chainId": f.chainId,
				}).Error("failed to get logs within one block")
				return err
			}
			first, second := r.halves()
			pending = append(pending, second, first)
			ctx.WithFields(log.Fields{
				"chainId": f.chainId,
				"range":   r.String(),
				"first":   first.String(),
				"second":  second.String(),
			}).Info("splitting block range")
			continue
		}

		if len(logs) == 0 {
			continue
		}
		ctx.WithFields(log.Fields{
			"chainId": f.chainId,
			"range":   r.String(),
			"#logs":   len(logs),
		}).Info("received logs")

		if err := f.eventHandler.ProcessEvents(ctx, logs); err != nil {
			ctx.WithFields(log.Fields{"err": err, "range": r.String()}).Error("eventHandler.ProcessEvents failed")
			return &handlerError{err}
		}
	}
	return nil
}
