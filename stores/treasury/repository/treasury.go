package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/treasury"
	"github.com/x-xyz/treemarket/service/query"
)

// the config is a singleton document
const configId = "marketplace"

type document struct {
	Id              string `bson:"_id"`
	treasury.Config `bson:"inline"`
}

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) treasury.Repo {
	return &impl{q}
}

func (im *impl) Get(c ctx.Ctx) (*treasury.Config, error) {
	res := document{}
	if err := im.q.FindOne(c, domain.TableTreasury, bson.M{"_id": configId}, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("failed to q.FindOne")
		return nil, err
	}
	return &res.Config, nil
}

func (im *impl) Upsert(c ctx.Ctx, cfg *treasury.Config) error {
	cfg.Owner = cfg.Owner.ToLower()
	cfg.Treasury = cfg.Treasury.ToLower()
	doc := document{Id: configId, Config: *cfg}
	if err := im.q.Upsert(c, domain.TableTreasury, bson.M{"_id": configId}, &doc); err != nil {
		c.WithFields(log.Fields{"err": err, "config": cfg}).Error("failed to q.Upsert")
		return err
	}
	return nil
}
