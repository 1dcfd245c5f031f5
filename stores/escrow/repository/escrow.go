package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/database/mongoclient"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/service/query"
)

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) escrow.Repo {
	return &impl{q}
}

func (im *impl) FindOne(c ctx.Ctx, key domain.AssetKey) (*escrow.Entry, error) {
	selector, err := mongoclient.MakeBsonM(key)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to mongoclient.MakeBsonM")
		return nil, err
	}

	res := escrow.Entry{}
	if err := im.q.FindOne(c, domain.TableEscrows, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) FindAll(c ctx.Ctx) ([]*escrow.Entry, error) {
	res := []*escrow.Entry{}
	if err := im.q.Search(c, domain.TableEscrows, 0, 0, "", bson.M{}, &res); err != nil {
		c.WithField("err", err).Error("failed to q.Search")
		return nil, err
	}
	return res, nil
}

func (im *impl) Insert(c ctx.Ctx, e *escrow.Entry) error {
	e.Contract = e.Contract.ToLower()
	e.Depositor = e.Depositor.ToLower()
	if err := im.q.Insert(c, domain.TableEscrows, e); errors.Is(err, query.ErrDuplicateKey) {
		return domain.ErrConflict
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "entry": e}).Error("failed to q.Insert")
		return err
	}
	return nil
}

func (im *impl) Remove(c ctx.Ctx, key domain.AssetKey) error {
	selector, err := mongoclient.MakeBsonM(key)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to mongoclient.MakeBsonM")
		return err
	}

	if err := im.q.Remove(c, domain.TableEscrows, selector); errors.Is(err, query.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Remove")
		return err
	}
	return nil
}
