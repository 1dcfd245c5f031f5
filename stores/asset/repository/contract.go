package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/service/query"
)

type contractRepo struct {
	q query.Mongo
}

func NewContractRepo(q query.Mongo) asset.ContractRepo {
	return &contractRepo{q}
}

func (im *contractRepo) FindOne(c ctx.Ctx, address domain.Address) (*asset.ContractInfo, error) {
	selector := bson.M{"address": address.ToLower()}

	res := asset.ContractInfo{}
	if err := im.q.FindOne(c, domain.TableAssetContracts, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *contractRepo) Upsert(c ctx.Ctx, info *asset.ContractInfo) error {
	info.Address = info.Address.ToLower()
	selector := bson.M{"address": info.Address}
	if err := im.q.Upsert(c, domain.TableAssetContracts, selector, info); err != nil {
		c.WithFields(log.Fields{"err": err, "info": info}).Error("failed to q.Upsert")
		return err
	}
	return nil
}
