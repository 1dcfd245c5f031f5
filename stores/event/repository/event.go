package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/ptr"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/event"
	"github.com/x-xyz/treemarket/service/query"
)

const defaultLimit = 100

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) event.Repo {
	return &impl{q}
}

func (im *impl) makeQuery(options event.FindAllOptions) bson.M {
	query := bson.M{}

	if options.Contract != nil {
		query["contract"] = *options.Contract
	}

	if options.TokenId != nil {
		query["tokenId"] = *options.TokenId
	}

	if options.Type != nil {
		query["type"] = *options.Type
	}

	return query
}

func (im *impl) Insert(c ctx.Ctx, e *event.Event) error {
	e.Contract = e.Contract.ToLower()
	e.Actor = e.Actor.ToLower()
	e.Counterparty = e.Counterparty.ToLower()
	if err := im.q.Insert(c, domain.TableEvents, e); err != nil {
		c.WithFields(log.Fields{"err": err, "event": e}).Error("failed to q.Insert")
		return err
	}
	return nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...event.FindAllOptionsFunc) ([]*event.Event, error) {
	options, err := event.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	query := im.makeQuery(options)

	offset := int(ptr.Int32Value(options.Offset, 0))
	limit := int(ptr.Int32Value(options.Limit, defaultLimit))

	res := []*event.Event{}
	if err := im.q.Search(c, domain.TableEvents, offset, limit, "-createdAt", query, &res); err != nil {
		c.WithFields(log.Fields{"err": err, "query": query}).Error("failed to q.Search")
		return nil, err
	}
	return res, nil
}
