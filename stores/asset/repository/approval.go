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

type approvalRepo struct {
	q query.Mongo
}

func NewApprovalRepo(q query.Mongo) asset.ApprovalRepo {
	return &approvalRepo{q}
}

func (im *approvalRepo) FindOne(c ctx.Ctx, id asset.ApprovalId) (*asset.Approval, error) {
	id.Contract = id.Contract.ToLower()
	id.Owner = id.Owner.ToLower()
	id.Operator = id.Operator.ToLower()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("failed to mongoclient.MakeBsonM")
		return nil, err
	}

	res := asset.Approval{}
	if err := im.q.FindOne(c, domain.TableAssetApprovals, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *approvalRepo) Upsert(c ctx.Ctx, a *asset.Approval) error {
	a.Contract = a.Contract.ToLower()
	a.Owner = a.Owner.ToLower()
	a.Operator = a.Operator.ToLower()
	selector, err := mongoclient.MakeBsonM(a.ToId())
	if err != nil {
		c.WithFields(log.Fields{"err": err, "approval": a}).Error("failed to mongoclient.MakeBsonM")
		return err
	}

	if err := im.q.Upsert(c, domain.TableAssetApprovals, selector, a); err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Upsert")
		return err
	}
	return nil
}
