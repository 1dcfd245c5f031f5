package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/reward"
	"github.com/x-xyz/treemarket/service/query"
)

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) reward.Repo {
	return &impl{q}
}

func (im *impl) FindToken(c ctx.Ctx, symbol string) (*reward.TokenState, error) {
	res := reward.TokenState{}
	if err := im.q.FindOne(c, domain.TableRewardTokens, bson.M{"symbol": symbol}, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "symbol": symbol}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) UpsertToken(c ctx.Ctx, t *reward.TokenState) error {
	t.Owner = t.Owner.ToLower()
	if err := im.q.Upsert(c, domain.TableRewardTokens, bson.M{"symbol": t.Symbol}, t); err != nil {
		c.WithFields(log.Fields{"err": err, "token": t}).Error("failed to q.Upsert")
		return err
	}
	return nil
}

func (im *impl) FindBalance(c ctx.Ctx, symbol string, holder domain.Address) (*reward.Balance, error) {
	selector := bson.M{"symbol": symbol, "holder": holder.ToLower()}

	res := reward.Balance{}
	if err := im.q.FindOne(c, domain.TableRewardBalances, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) UpsertBalance(c ctx.Ctx, b *reward.Balance) error {
	b.Holder = b.Holder.ToLower()
	selector := bson.M{"symbol": b.Symbol, "holder": b.Holder}
	if err := im.q.Upsert(c, domain.TableRewardBalances, selector, b); err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Upsert")
		return err
	}
	return nil
}
