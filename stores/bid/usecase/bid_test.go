package usecase

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/domain/event"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/domain/payment"
	"github.com/x-xyz/treemarket/domain/reward"
	"github.com/x-xyz/treemarket/domain/treasury"
	"github.com/x-xyz/treemarket/service/cache"
	"github.com/x-xyz/treemarket/service/cache/provider/primitive"
	"github.com/x-xyz/treemarket/service/keylock"
	"github.com/x-xyz/treemarket/service/memstore"
	assetUC "github.com/x-xyz/treemarket/stores/asset/usecase"
	escrowUC "github.com/x-xyz/treemarket/stores/escrow/usecase"
	eventUC "github.com/x-xyz/treemarket/stores/event/usecase"
	paymentUC "github.com/x-xyz/treemarket/stores/payment/usecase"
	rewardUC "github.com/x-xyz/treemarket/stores/reward/usecase"
	treasuryUC "github.com/x-xyz/treemarket/stores/treasury/usecase"
)

const (
	owner    = domain.Address("0x00000000000000000000000000000000000000a0")
	user1    = domain.Address("0x00000000000000000000000000000000000000a1")
	user2    = domain.Address("0x00000000000000000000000000000000000000a2")
	user3    = domain.Address("0x00000000000000000000000000000000000000a3")
	operator = domain.Address("0x00000000000000000000000000000000000000e0")
	nft      = domain.Address("0x00000000000000000000000000000000000000f1")

	feeBps = 250
)

var (
	oneEther = domain.MustParseAmount("1000000000000000000")
	funding  = domain.MustParseAmount("10000000000000000000")
)

func plus(a *big.Int, n int64) *big.Int {
	return new(big.Int).Add(a, big.NewInt(n))
}

// failingTransfer refuses every asset transfer after the ownership checks passed
type failingTransfer struct {
	asset.Contract
}

func (f *failingTransfer) Transfer(c ctx.Ctx, from, to domain.Address, tokenId domain.TokenId, amount *big.Int) error {
	return domain.ErrTransferFailed
}

type switchResolver struct {
	asset.Resolver
	failTransfers bool
}

func (r *switchResolver) Resolve(c ctx.Ctx, contract domain.Address) (asset.Contract, error) {
	token, err := r.Resolver.Resolve(c, contract)
	if err != nil || !r.failTransfers {
		return token, err
	}
	return &failingTransfer{token}, nil
}

type switchEmitter struct {
	reward.Emitter
	failAccepted bool
}

func (e *switchEmitter) Emit(c ctx.Ctx, t reward.Transition) ([]reward.Grant, error) {
	if e.failAccepted && t.Kind == reward.TransitionAccepted {
		return nil, errors.New("mint reverted")
	}
	return e.Emitter.Emit(c, t)
}

type bidSuite struct {
	suite.Suite

	store    *memstore.Store
	payments payment.UseCase
	ledger   escrow.Ledger
	token    reward.Token
	assets   asset.UseCase
	resolver *switchResolver
	emitter  *switchEmitter
	events   event.UseCase
	im       *impl
	key      domain.AssetKey
}

func TestBidSuite(t *testing.T) {
	suite.Run(t, new(bidSuite))
}

func (s *bidSuite) SetupTest() {
	c := ctx.Background()
	s.store = memstore.New()
	locker := keylock.NewLocal()

	s.payments = paymentUC.New(&paymentUC.PaymentUseCaseCfg{
		Repo:       s.store.Accounts(),
		Transactor: s.store,
		Locker:     locker,
	})
	s.ledger = escrowUC.New(&escrowUC.EscrowUseCaseCfg{Repo: s.store.Escrows(), Rail: s.payments})

	treasuries := treasuryUC.New(s.store.Treasury())
	_, err := treasuries.Bootstrap(c, owner, owner, feeBps)
	s.Require().NoError(err)

	s.token = rewardUC.NewToken(&rewardUC.TokenUseCaseCfg{Repo: s.store.Rewards(), Symbol: "TREE"})
	_, err = s.token.Create(c, owner)
	s.Require().NoError(err)
	s.Require().NoError(s.token.TransferOwnership(c, owner, operator))
	s.emitter = &switchEmitter{Emitter: rewardUC.NewEmitter(&rewardUC.EmitterCfg{
		Token:  s.token,
		Policy: rewardUC.ProportionalPolicy{SellerBps: 100, BuyerBps: 100},
		Minter: operator,
	})}

	s.resolver = &switchResolver{Resolver: assetUC.NewResolver(&assetUC.ResolverCfg{
		Contracts: s.store.Contracts(),
		Holdings:  s.store.Holdings(),
		Approvals: s.store.Approvals(),
		Cache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   keys.PfxAssetKind,
			Cache: primitive.NewPrimitive("asset", 1),
		}),
	})}
	s.assets = assetUC.New(&assetUC.AssetUseCaseCfg{
		Resolver:   s.resolver,
		Holdings:   s.store.Holdings(),
		Locker:     locker,
		Transactor: s.store,
		Operator:   operator,
	})
	s.Require().NoError(s.assets.Register(c, nft, asset.Kind721))

	s.events = eventUC.New(&eventUC.EventUseCaseCfg{Repo: s.store.Events()})

	s.im = New(&BidUseCaseCfg{
		Repo:       s.store.Bids(),
		Ledger:     s.ledger,
		Assets:     s.resolver,
		Treasury:   treasuries,
		Emitter:    s.emitter,
		Events:     s.events,
		Locker:     locker,
		Transactor: s.store,
		Operator:   operator,
	}).(*impl)

	s.key = domain.NewAssetKey(nft, "1")
	s.Require().NoError(s.assets.Deposit(c, s.key, user1, nil))
	for _, u := range []domain.Address{owner, user1, user2, user3} {
		_, err := s.payments.Deposit(c, u, funding)
		s.Require().NoError(err)
	}
}

// balance and held render amounts as strings so zero compares like any other value
func (s *bidSuite) balance(a domain.Address) string {
	bal, err := s.payments.Balance(ctx.Background(), a)
	s.Require().NoError(err)
	return domain.AmountString(bal)
}

func (s *bidSuite) held() string {
	total, err := s.ledger.TotalHeld(ctx.Background())
	s.Require().NoError(err)
	return domain.AmountString(total)
}

func (s *bidSuite) current() *bid.Bid {
	b, err := s.im.GetBid(ctx.Background(), s.key)
	s.Require().NoError(err)
	return b
}

func (s *bidSuite) place(bidder domain.Address, price *big.Int) error {
	_, err := s.im.PlaceBid(ctx.Background(), bidder, s.key, price, price)
	return err
}

func (s *bidSuite) rewards(a domain.Address) *big.Int {
	bal, err := s.token.BalanceOf(ctx.Background(), a)
	s.Require().NoError(err)
	return bal
}

func (s *bidSuite) ownerOf() domain.Address {
	token, err := s.resolver.Resolve(ctx.Background(), nft)
	s.Require().NoError(err)
	o, err := token.OwnerOf(ctx.Background(), "1")
	s.Require().NoError(err)
	return o
}

func (s *bidSuite) TestMarketplaceLifecycle() {
	c := ctx.Background()

	// a first tiny bid
	s.NoError(s.place(user3, big.NewInt(1)))
	s.Equal("1", s.held())

	// outbid by the owner, the tiny bid goes back
	s.NoError(s.place(owner, oneEther))
	s.Equal(oneEther.String(), s.current().Price)
	s.Equal(oneEther.String(), s.held())
	s.Equal(funding.String(), s.balance(user3))

	// cancelled, funds return
	s.NoError(s.im.CancelBid(c, owner, s.key))
	s.Equal("0", s.current().Price)
	s.Equal(domain.EmptyAddress, s.current().Bidder)
	s.Equal(funding.String(), s.balance(owner))
	s.Equal("0", s.held())

	s.NoError(s.place(user2, plus(oneEther, 1)))
	s.Equal(plus(oneEther, 1).String(), s.held())

	// a higher bid refunds user2
	s.NoError(s.place(user3, plus(oneEther, 2)))
	s.Equal(funding.String(), s.balance(user2))
	s.Equal(user3, s.current().Bidder)
	s.Equal(plus(oneEther, 2).String(), s.held())

	// accept needs approval and the live price
	_, err := s.im.AcceptBid(c, user1, s.key, plus(oneEther, 2))
	s.ErrorIs(err, domain.ErrNotApproved)
	s.ErrorIs(err, domain.ErrUnauthorized)
	s.NoError(s.assets.SetApprovalForAll(c, user1, nft, true))
	_, err = s.im.AcceptBid(c, user1, s.key, plus(oneEther, 1))
	s.ErrorIs(err, domain.ErrPriceMismatch)
	_, err = s.im.AcceptBid(c, user2, s.key, plus(oneEther, 2))
	s.ErrorIs(err, domain.ErrUnauthorized)

	settlement, err := s.im.AcceptBid(c, user1, s.key, plus(oneEther, 2))
	s.NoError(err)
	fee := domain.Bps(plus(oneEther, 2), feeBps)
	proceeds := new(big.Int).Sub(plus(oneEther, 2), fee)
	s.Equal(fee.String(), settlement.Fee)
	s.Equal(proceeds.String(), settlement.Proceeds)
	s.Equal(new(big.Int).Add(funding, proceeds).String(), s.balance(user1))
	s.Equal(new(big.Int).Add(funding, fee).String(), s.balance(owner))
	s.Equal(user3, s.ownerOf())
	s.Equal("0", s.held())
	s.Equal("0", s.current().Price)

	// the new owner rejects the next bid
	s.NoError(s.place(user1, plus(oneEther, 3)))
	s.ErrorIs(s.im.RejectBid(c, user1, s.key), domain.ErrUnauthorized)
	s.NoError(s.im.RejectBid(c, user3, s.key))
	s.Equal("0", s.current().Price)
	s.Equal(new(big.Int).Add(funding, proceeds).String(), s.balance(user1))
	s.Equal("0", s.held())

	// governance tokens
	s.Equal(1, s.rewards(user1).Sign())
	s.Equal(0, s.rewards(user2).Sign())
	s.Equal(1, s.rewards(user3).Sign())

	// treasury handover
	s.NoError(s.im.UpdateTreasuryAddress(c, owner, user1))
	treasuryAddr, err := s.im.Treasury(c)
	s.NoError(err)
	s.Equal(user1, treasuryAddr)
	s.NoError(s.im.UpdateTreasuryAddress(c, user1, user2))
	treasuryAddr, err = s.im.Treasury(c)
	s.NoError(err)
	s.Equal(user2, treasuryAddr)
	s.ErrorIs(s.im.UpdateTreasuryAddress(c, user3, user3), domain.ErrUnauthorized)
	s.ErrorIs(s.im.UpdateTreasuryAddress(c, owner, "not-an-address"), domain.ErrInvalidAddress)

	// audit trail
	accepted, err := s.events.List(c, event.WithType(event.TypeBidAccepted))
	s.NoError(err)
	s.Len(accepted, 1)
	s.Equal(user3, accepted[0].Counterparty)
	refunds, err := s.events.List(c, event.WithAsset(s.key), event.WithType(event.TypeBidRefunded))
	s.NoError(err)
	s.Len(refunds, 2)
	updates, err := s.events.List(c, event.WithType(event.TypeTreasuryUpdated))
	s.NoError(err)
	s.Len(updates, 2)
}

func (s *bidSuite) TestPlaceBidValidation() {
	c := ctx.Background()
	_, err := s.im.PlaceBid(c, user2, s.key, big.NewInt(0), big.NewInt(0))
	s.ErrorIs(err, domain.ErrInvalidAmount)
	_, err = s.im.PlaceBid(c, user2, s.key, big.NewInt(5), big.NewInt(4))
	s.ErrorIs(err, domain.ErrInvalidAmount)
	_, err = s.im.PlaceBid(c, user2, s.key, big.NewInt(5), nil)
	s.ErrorIs(err, domain.ErrInvalidAmount)
	_, err = s.im.PlaceBid(c, user2, domain.NewAssetKey("0x1", "1"), big.NewInt(5), big.NewInt(5))
	s.ErrorIs(err, domain.ErrInvalidAddress)
	_, err = s.im.PlaceBid(c, user2, domain.NewAssetKey("0x00000000000000000000000000000000000000f9", "1"), big.NewInt(5), big.NewInt(5))
	s.ErrorIs(err, domain.ErrUnsupportedAsset)
	s.Equal("0", s.held())
}

func (s *bidSuite) TestPlaceBidMustExceedActiveBid() {
	s.NoError(s.place(user2, big.NewInt(10)))

	err := s.place(user3, big.NewInt(10))
	s.ErrorIs(err, domain.ErrBidTooLow)
	s.ErrorIs(err, domain.ErrInvalidAmount)
	s.ErrorIs(s.place(user3, big.NewInt(9)), domain.ErrBidTooLow)

	s.Equal(user2, s.current().Bidder)
	s.Equal("10", s.held())
}

func (s *bidSuite) TestPlaceBidInsufficientFundsRollsBack() {
	s.NoError(s.place(user2, big.NewInt(10)))

	poor := domain.Address("0x00000000000000000000000000000000000000b9")
	err := s.place(poor, big.NewInt(11))
	s.ErrorIs(err, domain.ErrInsufficientFunds)
	s.ErrorIs(err, domain.ErrTransferFailed)

	// the refund of the previous bidder was undone with the rest
	s.Equal(user2, s.current().Bidder)
	s.Equal("10", s.held())
	s.Equal(new(big.Int).Sub(funding, big.NewInt(10)).String(), s.balance(user2))

	refunds, err := s.events.List(ctx.Background(), event.WithType(event.TypeBidRefunded))
	s.NoError(err)
	s.Empty(refunds)
}

func (s *bidSuite) TestCancelBid() {
	c := ctx.Background()
	s.ErrorIs(s.im.CancelBid(c, user2, s.key), domain.ErrNoActiveBid)

	s.NoError(s.place(user2, big.NewInt(10)))
	s.ErrorIs(s.im.CancelBid(c, user3, s.key), domain.ErrUnauthorized)
	s.ErrorIs(s.im.CancelBid(c, user1, s.key), domain.ErrUnauthorized)

	s.NoError(s.im.CancelBid(c, user2, s.key))
	s.Equal(funding.String(), s.balance(user2))
	s.ErrorIs(s.im.CancelBid(c, user2, s.key), domain.ErrNoActiveBid)
}

func (s *bidSuite) TestRejectWithoutBid() {
	s.ErrorIs(s.im.RejectBid(ctx.Background(), user1, s.key), domain.ErrNoActiveBid)
}

func (s *bidSuite) TestAcceptWithoutBid() {
	_, err := s.im.AcceptBid(ctx.Background(), user1, s.key, big.NewInt(1))
	s.ErrorIs(err, domain.ErrNoActiveBid)
}

func (s *bidSuite) assertUntouched(price *big.Int) {
	s.Equal(user2, s.current().Bidder)
	s.Equal(price.String(), s.held())
	s.Equal(user1, s.ownerOf())
	s.Equal(funding.String(), s.balance(user1))
	s.Equal(funding.String(), s.balance(owner))
	s.Equal(0, s.rewards(user1).Sign())
}

func (s *bidSuite) TestAcceptTransferFailureRollsBack() {
	c := ctx.Background()
	price := big.NewInt(1000)
	s.NoError(s.place(user2, price))
	s.NoError(s.assets.SetApprovalForAll(c, user1, nft, true))

	s.resolver.failTransfers = true
	_, err := s.im.AcceptBid(c, user1, s.key, price)
	s.ErrorIs(err, domain.ErrTransferFailed)
	s.resolver.failTransfers = false

	s.assertUntouched(price)
}

func (s *bidSuite) TestAcceptMintFailureRollsBack() {
	c := ctx.Background()
	price := big.NewInt(1000)
	s.NoError(s.place(user2, price))
	s.NoError(s.assets.SetApprovalForAll(c, user1, nft, true))

	s.emitter.failAccepted = true
	_, err := s.im.AcceptBid(c, user1, s.key, price)
	s.Error(err)
	s.emitter.failAccepted = false

	s.assertUntouched(price)

	_, err = s.im.AcceptBid(c, user1, s.key, price)
	s.NoError(err)
	s.Equal(user2, s.ownerOf())
}

func (s *bidSuite) TestAcceptFeeSplit() {
	c := ctx.Background()
	price := big.NewInt(1000)
	s.NoError(s.place(user2, price))
	s.NoError(s.assets.SetApprovalForAll(c, user1, nft, true))

	settlement, err := s.im.AcceptBid(c, user1, s.key, price)
	s.NoError(err)
	s.Equal("25", settlement.Fee)
	s.Equal("975", settlement.Proceeds)
	s.Equal(owner, settlement.Treasury)
	s.Equal(plus(funding, 975).String(), s.balance(user1))
	s.Equal(plus(funding, 25).String(), s.balance(owner))
}

func (s *bidSuite) TestListByBidder() {
	c := ctx.Background()
	other := domain.NewAssetKey(nft, "2")
	s.NoError(s.assets.Deposit(c, other, user1, nil))
	s.NoError(s.place(user2, big.NewInt(10)))
	_, err := s.im.PlaceBid(c, user2, other, big.NewInt(20), big.NewInt(20))
	s.NoError(err)
	_, err = s.im.PlaceBid(c, user3, other, big.NewInt(30), big.NewInt(30))
	s.NoError(err)

	res, err := s.im.List(c, bid.WithBidder(user2))
	s.NoError(err)
	s.Len(res, 1)
	s.Equal(domain.TokenId("1"), res[0].TokenId)

	res, err = s.im.List(c, bid.WithContract(nft))
	s.NoError(err)
	s.Len(res, 2)
	s.Equal("40", s.held())
}

func (s *bidSuite) TestTreasuryDefaults() {
	addr, err := s.im.Treasury(ctx.Background())
	s.NoError(err)
	s.Equal(owner, addr)

	cfg := &treasury.Config{}
	s.False(cfg.CanUpdate(user1))
}

func (s *bidSuite) TestTokenIdAliasesShareOneBid() {
	c := ctx.Background()
	s.NoError(s.place(user2, big.NewInt(10)))

	for _, alias := range []domain.TokenId{"01", "+1", "001"} {
		_, err := s.im.PlaceBid(c, user3, domain.AssetKey{Contract: nft, TokenId: alias}, big.NewInt(5), big.NewInt(5))
		s.ErrorIs(err, domain.ErrBidTooLow, string(alias))
	}
	s.Equal("10", s.held())

	placed, err := s.im.PlaceBid(c, user3, domain.AssetKey{Contract: nft, TokenId: "01"}, big.NewInt(11), big.NewInt(11))
	s.NoError(err)
	s.Equal(domain.TokenId("1"), placed.TokenId)
	s.Equal(user3, s.current().Bidder)
	s.Equal(funding.String(), s.balance(user2))
	s.Equal("11", s.held())

	res, err := s.im.List(c, bid.WithContract(nft))
	s.NoError(err)
	s.Len(res, 1)

	s.NoError(s.assets.SetApprovalForAll(c, user1, nft, true))
	_, err = s.im.AcceptBid(c, user1, domain.AssetKey{Contract: nft, TokenId: "001"}, big.NewInt(11))
	s.NoError(err)
	s.Equal(user3, s.ownerOf())
	s.Equal("0", s.held())
}

func (s *bidSuite) TestTokenIdOutOfRange() {
	tooLarge := domain.TokenId(new(big.Int).Lsh(big.NewInt(1), 256).String())
	_, err := s.im.PlaceBid(ctx.Background(), user2, domain.NewAssetKey(nft, tooLarge), big.NewInt(5), big.NewInt(5))
	s.ErrorIs(err, domain.ErrBadParamInput)

	maxId := domain.TokenId(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)).String())
	s.True(maxId.IsValid())
	s.False(domain.TokenId("-1").IsValid())
	s.Equal("0", s.held())
}

func (s *bidSuite) multiBalance(holder domain.Address, key domain.AssetKey) string {
	token, err := s.resolver.Resolve(ctx.Background(), key.Contract)
	s.Require().NoError(err)
	bal, err := token.BalanceOf(ctx.Background(), holder, key.TokenId)
	s.Require().NoError(err)
	return bal.String()
}

func (s *bidSuite) TestAcceptMultiBalanceAsset() {
	c := ctx.Background()
	mb := domain.Address("0x00000000000000000000000000000000000000f2")
	s.Require().NoError(s.assets.Register(c, mb, asset.Kind1155))
	key := domain.NewAssetKey(mb, "5")
	s.Require().NoError(s.assets.Deposit(c, key, user1, big.NewInt(3)))
	s.NoError(s.assets.SetApprovalForAll(c, user1, mb, true))

	_, err := s.im.PlaceBid(c, user2, key, big.NewInt(100), big.NewInt(100))
	s.NoError(err)
	s.ErrorIs(s.im.RejectBid(c, user3, key), domain.ErrUnauthorized)

	settlement, err := s.im.AcceptBid(c, user1, key, big.NewInt(100))
	s.NoError(err)
	s.Equal(user1, settlement.Seller)
	s.Equal("2", s.multiBalance(user1, key))
	s.Equal("1", s.multiBalance(user2, key))
	s.Equal(plus(funding, 98).String(), s.balance(user1))

	// the seller still holds units and sells another one
	_, err = s.im.PlaceBid(c, user3, key, big.NewInt(60), big.NewInt(60))
	s.NoError(err)
	_, err = s.im.AcceptBid(c, user1, key, big.NewInt(60))
	s.NoError(err)
	s.Equal("1", s.multiBalance(user1, key))
	s.Equal("1", s.multiBalance(user3, key))

	// any holder may reject
	_, err = s.im.PlaceBid(c, owner, key, big.NewInt(70), big.NewInt(70))
	s.NoError(err)
	s.NoError(s.im.RejectBid(c, user2, key))
	s.Equal(funding.String(), s.balance(owner))

	holders, err := s.assets.Holders(c, key)
	s.NoError(err)
	s.Len(holders, 3)
	s.Equal("0", s.held())
}

func (s *bidSuite) TestConcurrentPlaceBid() {
	c := ctx.Background()
	const bidders = 8

	var addrs []domain.Address
	for i := 0; i < bidders; i++ {
		a := domain.Address(fmt.Sprintf("0x00000000000000000000000000000000000001%02x", i))
		_, err := s.payments.Deposit(c, a, funding)
		s.Require().NoError(err)
		addrs = append(addrs, a)
	}

	errs := make([]error, bidders)
	var wg sync.WaitGroup
	for i := range addrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			price := big.NewInt(int64(i+1) * 10)
			_, errs[i] = s.im.PlaceBid(c, addrs[i], s.key, price, price)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.ErrorIs(err, domain.ErrBidTooLow)
		}
	}
	s.NoError(errs[bidders-1])

	res, err := s.im.List(c, bid.WithContract(nft))
	s.NoError(err)
	s.Len(res, 1)
	s.Equal(addrs[bidders-1], s.current().Bidder)
	s.Equal("80", s.held())

	for i, a := range addrs[:bidders-1] {
		s.Equal(funding.String(), s.balance(a), "bidder %d", i)
	}
	s.Equal(new(big.Int).Sub(funding, big.NewInt(80)).String(), s.balance(addrs[bidders-1]))
}
