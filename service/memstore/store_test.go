package memstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/domain/event"
)

const nft = domain.Address("0x00000000000000000000000000000000000000F1")

type storeSuite struct {
	suite.Suite
	s *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(storeSuite))
}

func (ts *storeSuite) SetupTest() {
	ts.s = New()
}

func (ts *storeSuite) TestRollback() {
	c := ctx.Background()
	key := domain.NewAssetKey(nft, "1")
	ts.NoError(ts.s.Escrows().Insert(c, &escrow.Entry{Contract: nft, TokenId: "1", Amount: "5"}))

	boom := errors.New("boom")
	err := ts.s.RunWithTransaction(c, func(c ctx.Ctx) error {
		ts.NoError(ts.s.Escrows().Remove(c, key))
		ts.NoError(ts.s.Bids().Upsert(c, &bid.Bid{Contract: nft, TokenId: "1", Price: "5"}))
		return boom
	})
	ts.Equal(boom, err)

	e, err := ts.s.Escrows().FindOne(c, key)
	ts.NoError(err)
	ts.Equal("5", e.Amount)
	_, err = ts.s.Bids().FindOne(c, key)
	ts.Equal(domain.ErrNotFound, err)
}

func (ts *storeSuite) TestRollbackKeepsConcurrentWrites() {
	c := ctx.Background()
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- ts.s.RunWithTransaction(c, func(c ctx.Ctx) error {
			close(started)
			time.Sleep(50 * time.Millisecond)
			return errors.New("boom")
		})
	}()

	<-started
	approval := &asset.Approval{Contract: nft, Owner: "0x00000000000000000000000000000000000000a1", Operator: "0x00000000000000000000000000000000000000e0", Approved: true}
	ts.NoError(ts.s.Approvals().Upsert(c, approval))
	ts.Error(<-done)

	got, err := ts.s.Approvals().FindOne(c, approval.ToId())
	ts.NoError(err)
	ts.True(got.Approved)
}

func (ts *storeSuite) TestNestedTransactionJoinsOuter() {
	c := ctx.Background()
	boom := errors.New("boom")
	err := ts.s.RunWithTransaction(c, func(c ctx.Ctx) error {
		ts.NoError(ts.s.RunWithTransaction(c, func(c ctx.Ctx) error {
			return ts.s.Bids().Upsert(c, &bid.Bid{Contract: nft, TokenId: "1", Price: "5"})
		}))
		return boom
	})
	ts.Equal(boom, err)

	_, err = ts.s.Bids().FindOne(c, domain.NewAssetKey(nft, "1"))
	ts.Equal(domain.ErrNotFound, err)
}

func (ts *storeSuite) TestCommit() {
	c := ctx.Background()
	ts.NoError(ts.s.RunWithTransaction(c, func(c ctx.Ctx) error {
		return ts.s.Bids().Upsert(c, &bid.Bid{Contract: nft, TokenId: "1", Price: "5"})
	}))
	b, err := ts.s.Bids().FindOne(c, domain.NewAssetKey(nft, "1"))
	ts.NoError(err)
	ts.Equal(nft.ToLower(), b.Contract)
}

func (ts *storeSuite) TestEscrowInsertConflicts() {
	c := ctx.Background()
	ts.NoError(ts.s.Escrows().Insert(c, &escrow.Entry{Contract: nft, TokenId: "1", Amount: "5"}))
	ts.Equal(domain.ErrConflict, ts.s.Escrows().Insert(c, &escrow.Entry{Contract: nft, TokenId: "1", Amount: "6"}))
}

func (ts *storeSuite) TestBidsNewestFirstWithPagination() {
	c := ctx.Background()
	base := time.Unix(1660000000, 0)
	for i, id := range []domain.TokenId{"1", "2", "3"} {
		ts.NoError(ts.s.Bids().Upsert(c, &bid.Bid{Contract: nft, TokenId: id, Price: "1", UpdatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	res, err := ts.s.Bids().FindAll(c, bid.WithContract(nft), bid.WithPagination(1, 1))
	ts.NoError(err)
	ts.Len(res, 1)
	ts.Equal(domain.TokenId("2"), res[0].TokenId)

	res, err = ts.s.Bids().FindAll(c, bid.WithPagination(5, 1))
	ts.NoError(err)
	ts.Empty(res)
}

func (ts *storeSuite) TestEventsFilter() {
	c := ctx.Background()
	ts.NoError(ts.s.Events().Insert(c, &event.Event{Type: event.TypeBidPlaced, Contract: nft, TokenId: "1"}))
	ts.NoError(ts.s.Events().Insert(c, &event.Event{Type: event.TypeBidCancelled, Contract: nft, TokenId: "1"}))
	ts.NoError(ts.s.Events().Insert(c, &event.Event{Type: event.TypeTreasuryUpdated}))

	res, err := ts.s.Events().FindAll(c, event.WithAsset(domain.NewAssetKey(nft, "1")))
	ts.NoError(err)
	ts.Len(res, 2)
	ts.Equal(event.TypeBidCancelled, res[0].Type)

	res, err = ts.s.Events().FindAll(c, event.WithType(event.TypeTreasuryUpdated))
	ts.NoError(err)
	ts.Len(res, 1)
}
