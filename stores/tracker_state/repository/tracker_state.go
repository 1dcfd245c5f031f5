package repository

import (
	"errors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/database/mongoclient"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/service/query"
)

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) domain.TrackerStateRepo {
	return &impl{q}
}

func (im *impl) Get(c ctx.Ctx, id *domain.TrackerStateId) (*domain.TrackerState, error) {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("failed to mongoclient.MakeBsonM")
		return nil, err
	}

	res := domain.TrackerState{}
	if err := im.q.FindOne(c, domain.TableTrackerStates, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) Upsert(c ctx.Ctx, s *domain.TrackerState) error {
	s.Custody = s.Custody.ToLower()
	selector, err := mongoclient.MakeBsonM(s.ToId())
	if err != nil {
		c.WithFields(log.Fields{"err": err, "state": s}).Error("failed to mongoclient.MakeBsonM")
		return err
	}

	if err := im.q.Upsert(c, domain.TableTrackerStates, selector, s); err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Upsert")
		return err
	}
	return nil
}
