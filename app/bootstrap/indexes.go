package bootstrap

import (
	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/service/query"
)

var indexes = map[domain.Table][]query.Index{
	domain.TableBids: {
		{Keys: []string{"contract", "tokenId"}, Unique: true},
		{Keys: []string{"bidder", "updatedAt"}},
	},
	domain.TableEscrows: {
		{Keys: []string{"contract", "tokenId"}, Unique: true},
	},
	domain.TableAccounts: {
		{Keys: []string{"address"}, Unique: true},
	},
	domain.TableRewardTokens: {
		{Keys: []string{"symbol"}, Unique: true},
	},
	domain.TableRewardBalances: {
		{Keys: []string{"symbol", "holder"}, Unique: true},
	},
	domain.TableAssetContracts: {
		{Keys: []string{"address"}, Unique: true},
	},
	domain.TableAssetHoldings: {
		{Keys: []string{"contract", "tokenId", "owner"}, Unique: true},
	},
	domain.TableAssetApprovals: {
		{Keys: []string{"contract", "owner", "operator"}, Unique: true},
	},
	domain.TableEvents: {
		{Keys: []string{"id"}, Unique: true},
		{Keys: []string{"contract", "tokenId", "createdAt"}},
		{Keys: []string{"type", "createdAt"}},
	},
	domain.TableTrackerStates: {
		{Keys: []string{"chainId", "custody", "tag"}, Unique: true},
	},
}

func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	for table, idx := range indexes {
		if err := q.EnsureIndexes(c, table, idx...); err != nil {
			c.WithFields(log.Fields{"err": err, "table": table}).Error("failed to q.EnsureIndexes")
			return err
		}
	}
	return nil
}
