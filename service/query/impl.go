package query

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/database/mongoclient"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/metrics"
	"github.com/x-xyz/treemarket/domain"
)

const (
	queryMaxTime      = 20 * time.Second
	slowLogThreshold  = 500 * time.Millisecond
	maxConcurrentTxns = 10
)

var (
	timeNow = time.Now
)

type impl struct {
	client *mongoclient.Client
	tokens chan int
	met    metrics.Service
}

// New initializes an impl
func New(client *mongoclient.Client) Mongo {
	tokens := make(chan int, maxConcurrentTxns)
	for i := 0; i < maxConcurrentTxns; i++ {
		tokens <- i + 1
	}
	return &impl{
		client: client,
		tokens: tokens,
		met:    metrics.New("mongo"),
	}
}

func (im *impl) coll(table domain.Table) *mongo.Collection {
	return im.client.Database(im.client.DbName).Collection(string(table))
}

func (im *impl) logerr(c ctx.Ctx, msg string, err error) {
	im.met.BumpSum("err", 1, "msg", msg)
	c.WithFields(log.Fields{"err": err}).Error(msg)
}

func (im *impl) Insert(c ctx.Ctx, table domain.Table, insert interface{}) error {
	defer im.slowLog(c, table, "insert", nil)()

	if _, err := im.coll(table).InsertOne(c, insert); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(ctx.WithValue(c, "table", table), "Insert: InsertOne failed", err)
		return err
	}
	return nil
}

func (im *impl) FindOne(c ctx.Ctx, table domain.Table, query, result interface{}) error {
	defer im.slowLog(c, table, "findone", query)()

	opts := options.FindOne().SetMaxTime(queryMaxTime)
	if err := im.coll(table).FindOne(c, query, opts).Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		im.logerr(ctx.WithValues(c, map[string]interface{}{"table": table, "query": query}), "FindOne: Decode failed", err)
		return err
	}
	return nil
}

func (im *impl) Count(c ctx.Ctx, table domain.Table, selector interface{}) (int, error) {
	defer im.slowLog(c, table, "count", selector)()

	opts := options.Count().SetMaxTime(queryMaxTime)
	n, err := im.coll(table).CountDocuments(c, selector, opts)
	if err != nil {
		im.logerr(ctx.WithValue(c, "table", table), "Count: CountDocuments failed", err)
		return 0, err
	}
	return int(n), nil
}

func (im *impl) Upsert(c ctx.Ctx, table domain.Table, selector, update interface{}) error {
	defer im.slowLog(c, table, "upsert", selector)()

	opts := options.Replace().SetUpsert(true)
	if _, err := im.coll(table).ReplaceOne(c, selector, update, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(ctx.WithValues(c, map[string]interface{}{"table": table, "selector": selector}), "Upsert: ReplaceOne failed", err)
		return err
	}
	return nil
}

func sortOption(sort string) bson.D {
	if sort == "" {
		return nil
	}
	if sort[0] == '-' {
		return bson.D{{Key: sort[1:], Value: -1}}
	}
	return bson.D{{Key: sort, Value: 1}}
}

func (im *impl) Search(c ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error {
	defer im.slowLog(c, table, "search", query)()

	opts := options.Find().SetMaxTime(queryMaxTime).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if s := sortOption(sort); s != nil {
		opts.SetSort(s)
	}

	cursor, err := im.coll(table).Find(c, query, opts)
	if err != nil {
		im.logerr(ctx.WithValues(c, map[string]interface{}{"table": table, "query": query}), "Search: Find failed", err)
		return err
	}
	defer cursor.Close(c)

	if err := cursor.All(c, results); err != nil {
		im.logerr(ctx.WithValue(c, "table", table), "Search: cursor.All failed", err)
		return err
	}
	return nil
}

func (im *impl) Remove(c ctx.Ctx, table domain.Table, selector interface{}) error {
	defer im.slowLog(c, table, "remove", selector)()

	res, err := im.coll(table).DeleteOne(c, selector)
	if err != nil {
		im.logerr(ctx.WithValues(c, map[string]interface{}{"table": table, "selector": selector}), "Remove: DeleteOne failed", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (im *impl) Patch(c ctx.Ctx, table domain.Table, selector, update interface{}) error {
	defer im.slowLog(c, table, "patch", selector)()

	res, err := im.coll(table).UpdateOne(c, selector, bson.M{"$set": update})
	if err != nil {
		im.logerr(ctx.WithValues(c, map[string]interface{}{"table": table, "selector": selector}), "Patch: UpdateOne failed", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (im *impl) EnsureIndexes(c ctx.Ctx, table domain.Table, indexes ...Index) error {
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, idx := range indexes {
		keys := bson.D{}
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		models = append(models, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(idx.Unique),
		})
	}
	if len(models) == 0 {
		return nil
	}
	if _, err := im.coll(table).Indexes().CreateMany(c, models); err != nil {
		im.logerr(ctx.WithValue(c, "table", table), "EnsureIndexes: CreateMany failed", err)
		return err
	}
	return nil
}

// RunWithTransaction runs fn in a session transaction. The driver retries fn on transient
// errors, so fn must not keep state across calls.
func (im *impl) RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	select {
	case <-c.Done():
		return c.Err()
	case token := <-im.tokens:
		defer func() { im.tokens <- token }()
	}
	defer im.met.BumpTime("txn.time").End()

	session, err := im.client.StartSession()
	if err != nil {
		im.logerr(c, "RunWithTransaction: StartSession failed", err)
		return err
	}
	defer session.EndSession(c)

	_, err = session.WithTransaction(c, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(ctx.Wrap(c, sessCtx))
	})
	return err
}

func (im *impl) slowLog(c ctx.Ctx, table domain.Table, action string, query interface{}) func() {
	start := timeNow()

	return func() {
		elapsed := time.Since(start)
		if elapsed < slowLogThreshold {
			return
		}
		im.met.BumpSum("slowlog", 1, "table", string(table), "action", action)
		c.WithFields(log.Fields{
			"table":      table,
			"action":     action,
			"durationMs": elapsed.Milliseconds(),
			"query":      query,
		}).Warn("mongo slowlog")
	}
}
