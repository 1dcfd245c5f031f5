package repository

import (
	"errors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/database/mongoclient"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/service/query"
)

type holdingRepo struct {
	q query.Mongo
}

func NewHoldingRepo(q query.Mongo) asset.HoldingRepo {
	return &holdingRepo{q}
}

func normalizeHoldingId(id asset.HoldingId) asset.HoldingId {
	id.Contract = id.Contract.ToLower()
	id.Owner = id.Owner.ToLower()
	return id
}

func (im *holdingRepo) FindOne(c ctx.Ctx, id asset.HoldingId) (*asset.Holding, error) {
	selector, err := mongoclient.MakeBsonM(normalizeHoldingId(id))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("failed to mongoclient.MakeBsonM")
		return nil, err
	}

	res := asset.Holding{}
	if err := im.q.FindOne(c, domain.TableAssetHoldings, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *holdingRepo) FindByToken(c ctx.Ctx, key domain.AssetKey) ([]*asset.Holding, error) {
	selector, err := mongoclient.MakeBsonM(domain.NewAssetKey(key.Contract, key.TokenId))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to mongoclient.MakeBsonM")
		return nil, err
	}

	res := []*asset.Holding{}
	if err := im.q.Search(c, domain.TableAssetHoldings, 0, 0, "owner", selector, &res); err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Search")
		return nil, err
	}
	return res, nil
}

func (im *holdingRepo) Upsert(c ctx.Ctx, h *asset.Holding) error {
	h.Contract = h.Contract.ToLower()
	h.Owner = h.Owner.ToLower()
	selector, err := mongoclient.MakeBsonM(h.ToId())
	if err != nil {
		c.WithFields(log.Fields{"err": err, "holding": h}).Error("failed to mongoclient.MakeBsonM")
		return err
	}

	if err := im.q.Upsert(c, domain.TableAssetHoldings, selector, h); err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Upsert")
		return err
	}
	return nil
}

func (im *holdingRepo) Remove(c ctx.Ctx, id asset.HoldingId) error {
	selector, err := mongoclient.MakeBsonM(normalizeHoldingId(id))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("failed to mongoclient.MakeBsonM")
		return err
	}

	if err := im.q.Remove(c, domain.TableAssetHoldings, selector); errors.Is(err, query.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Remove")
		return err
	}
	return nil
}
