package usecase

import (
	"errors"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

type impl struct {
	repo       domain.TrackerStateRepo
	ctxTimeout time.Duration
}

func New(r domain.TrackerStateRepo, ctxTimeout time.Duration) domain.TrackerStateUseCase {
	return &impl{
		repo:       r,
		ctxTimeout: ctxTimeout,
	}
}

func (im *impl) Get(c ctx.Ctx, id *domain.TrackerStateId, fromBlock uint64) (*domain.TrackerState, error) {
	tc, cancel := ctx.WithTimeout(c, im.ctxTimeout)
	defer cancel()

	s, err := im.repo.Get(tc, id)
	if errors.Is(err, domain.ErrNotFound) {
		start := uint64(0)
		if fromBlock > 0 {
			start = fromBlock - 1
		}
		return &domain.TrackerState{
			ChainId:            id.ChainId,
			Custody:            id.Custody,
			Tag:                id.Tag,
			LastBlockProcessed: start,
		}, nil
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (im *impl) Advance(c ctx.Ctx, id *domain.TrackerStateId, block uint64) error {
	tc, cancel := ctx.WithTimeout(c, im.ctxTimeout)
	defer cancel()

	return im.repo.Upsert(tc, &domain.TrackerState{
		ChainId:            id.ChainId,
		Custody:            id.Custody,
		Tag:                id.Tag,
		LastBlockProcessed: block,
	})
}
