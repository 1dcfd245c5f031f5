package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/payment"
	"github.com/x-xyz/treemarket/service/query"
)

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) payment.Repo {
	return &impl{q}
}

func (im *impl) FindOne(c ctx.Ctx, address domain.Address) (*payment.Account, error) {
	selector := bson.M{"address": address.ToLower()}

	res := payment.Account{}
	if err := im.q.FindOne(c, domain.TableAccounts, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) Upsert(c ctx.Ctx, a *payment.Account) error {
	a.Address = a.Address.ToLower()
	selector := bson.M{"address": a.Address}
	if err := im.q.Upsert(c, domain.TableAccounts, selector, a); err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Upsert")
		return err
	}
	return nil
}
