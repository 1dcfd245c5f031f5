package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/database/mongoclient"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/ptr"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/service/query"
)

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) bid.Repo {
	return &impl{q}
}

func (im *impl) makeQuery(options bid.FindAllOptions) bson.M {
	query := bson.M{}

	if options.Contract != nil {
		query["contract"] = *options.Contract
	}

	if options.Bidder != nil {
		query["bidder"] = *options.Bidder
	}

	return query
}

func (im *impl) FindOne(c ctx.Ctx, key domain.AssetKey) (*bid.Bid, error) {
	selector, err := mongoclient.MakeBsonM(key)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to mongoclient.MakeBsonM")
		return nil, err
	}

	res := bid.Bid{}
	if err := im.q.FindOne(c, domain.TableBids, selector, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...bid.FindAllOptionsFunc) ([]*bid.Bid, error) {
	options, err := bid.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	query := im.makeQuery(options)

	// a zero limit lists every bid
	offset := int(ptr.Int32Value(options.Offset, 0))
	limit := int(ptr.Int32Value(options.Limit, 0))

	res := []*bid.Bid{}
	if err := im.q.Search(c, domain.TableBids, offset, limit, "-updatedAt", query, &res); err != nil {
		c.WithFields(log.Fields{"err": err, "query": query}).Error("failed to q.Search")
		return nil, err
	}
	return res, nil
}

func (im *impl) Upsert(c ctx.Ctx, b *bid.Bid) error {
	selector, err := mongoclient.MakeBsonM(b.Key())
	if err != nil {
		c.WithFields(log.Fields{"err": err, "bid": b}).Error("failed to mongoclient.MakeBsonM")
		return err
	}

	b.Contract = b.Contract.ToLower()
	b.Bidder = b.Bidder.ToLower()
	if err := im.q.Upsert(c, domain.TableBids, selector, b); err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Upsert")
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

	if err := im.q.Remove(c, domain.TableBids, selector); errors.Is(err, query.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "selector": selector}).Error("failed to q.Remove")
		return err
	}
	return nil
}
