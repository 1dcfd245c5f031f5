package usecase

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/reward"
)

const (
	symbol = "TREE"
	market = domain.Address("0x00000000000000000000000000000000000000aa")
	seller = domain.Address("0x00000000000000000000000000000000000000bb")
	buyer  = domain.Address("0x00000000000000000000000000000000000000cc")
	loser  = domain.Address("0x00000000000000000000000000000000000000dd")
)

type memRepo struct {
	tokens   map[string]reward.TokenState
	balances map[string]reward.Balance
	failMint bool
}

func newMemRepo() *memRepo {
	return &memRepo{tokens: map[string]reward.TokenState{}, balances: map[string]reward.Balance{}}
}

func (m *memRepo) FindToken(_ ctx.Ctx, symbol string) (*reward.TokenState, error) {
	t, ok := m.tokens[symbol]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memRepo) UpsertToken(_ ctx.Ctx, t *reward.TokenState) error {
	m.tokens[t.Symbol] = *t
	return nil
}

func (m *memRepo) FindBalance(_ ctx.Ctx, symbol string, holder domain.Address) (*reward.Balance, error) {
	b, ok := m.balances[symbol+holder.ToLowerStr()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (m *memRepo) UpsertBalance(_ ctx.Ctx, b *reward.Balance) error {
	if m.failMint {
		return errors.New("write failed")
	}
	m.balances[b.Symbol+b.Holder.ToLowerStr()] = *b
	return nil
}

type rewardSuite struct {
	suite.Suite

	repo  *memRepo
	token reward.Token
}

func TestRewardSuite(t *testing.T) {
	suite.Run(t, new(rewardSuite))
}

func (s *rewardSuite) SetupTest() {
	s.repo = newMemRepo()
	s.token = NewToken(&TokenUseCaseCfg{Repo: s.repo, Symbol: symbol})
	_, err := s.token.Create(ctx.Background(), market)
	s.Require().NoError(err)
}

func (s *rewardSuite) TestCreateIsIdempotent() {
	st, err := s.token.Create(ctx.Background(), seller)
	s.NoError(err)
	s.Equal(market, st.Owner)
}

func (s *rewardSuite) TestMintOnlyByOwner() {
	c := ctx.Background()
	s.ErrorIs(s.token.Mint(c, seller, seller, big.NewInt(5)), domain.ErrUnauthorized)
	s.NoError(s.token.Mint(c, market, seller, big.NewInt(5)))
	s.NoError(s.token.Mint(c, market, seller, big.NewInt(6)))

	bal, err := s.token.BalanceOf(c, seller)
	s.NoError(err)
	s.Equal(big.NewInt(11), bal)
	s.Equal("11", s.repo.tokens[symbol].TotalSupply)
}

func (s *rewardSuite) TestMintRejectsBadInput() {
	c := ctx.Background()
	s.ErrorIs(s.token.Mint(c, market, seller, big.NewInt(0)), domain.ErrInvalidAmount)
	s.ErrorIs(s.token.Mint(c, market, "0x12", big.NewInt(1)), domain.ErrInvalidAddress)
}

func (s *rewardSuite) TestTransferOwnership() {
	c := ctx.Background()
	s.ErrorIs(s.token.TransferOwnership(c, seller, seller), domain.ErrUnauthorized)
	s.NoError(s.token.TransferOwnership(c, market, seller))

	owner, err := s.token.Owner(c)
	s.NoError(err)
	s.Equal(seller, owner)
	s.ErrorIs(s.token.Mint(c, market, buyer, big.NewInt(1)), domain.ErrUnauthorized)
}

func (s *rewardSuite) TestProportionalPolicy() {
	p := ProportionalPolicy{SellerBps: 100, BuyerBps: 50}
	price := domain.MustParseAmount("1000000000000000002")

	s.Nil(p.Accrue(reward.Transition{Kind: reward.TransitionPlaced, Bidder: buyer, Price: price}))
	s.Nil(p.Accrue(reward.Transition{Kind: reward.TransitionReplaced, Bidder: buyer, Previous: loser, Price: price}))

	grants := p.Accrue(reward.Transition{Kind: reward.TransitionAccepted, Bidder: buyer, Seller: seller, Price: price})
	s.Equal([]reward.Grant{
		{To: seller, Amount: domain.MustParseAmount("10000000000000000")},
		{To: buyer, Amount: domain.MustParseAmount("5000000000000000")},
	}, grants)
}

func (s *rewardSuite) TestProportionalPolicySkipsDust() {
	p := ProportionalPolicy{SellerBps: 100, BuyerBps: 0}
	grants := p.Accrue(reward.Transition{Kind: reward.TransitionAccepted, Bidder: buyer, Seller: seller, Price: big.NewInt(99)})
	s.Empty(grants)
}

func (s *rewardSuite) TestEmit() {
	c := ctx.Background()
	em := NewEmitter(&EmitterCfg{
		Token:  s.token,
		Policy: ProportionalPolicy{SellerBps: 100, BuyerBps: 100},
		Minter: market,
	})

	grants, err := em.Emit(c, reward.Transition{Kind: reward.TransitionAccepted, Bidder: buyer, Seller: seller, Price: big.NewInt(10000)})
	s.NoError(err)
	s.Len(grants, 2)

	for _, holder := range []domain.Address{seller, buyer} {
		bal, err := s.token.BalanceOf(c, holder)
		s.NoError(err)
		s.Equal(big.NewInt(100), bal)
	}
	bal, err := s.token.BalanceOf(c, loser)
	s.NoError(err)
	s.Equal(0, bal.Sign())
}

func (s *rewardSuite) TestEmitPropagatesMintFailure() {
	c := ctx.Background()
	em := NewEmitter(&EmitterCfg{
		Token:  s.token,
		Policy: ProportionalPolicy{SellerBps: 100},
		Minter: market,
	})
	s.repo.failMint = true

	_, err := em.Emit(c, reward.Transition{Kind: reward.TransitionAccepted, Bidder: buyer, Seller: seller, Price: big.NewInt(10000)})
	s.Error(err)
}

func (s *rewardSuite) TestNoopEmitter() {
	em := NewEmitter(&EmitterCfg{Token: s.token, Minter: market})
	grants, err := em.Emit(ctx.Background(), reward.Transition{Kind: reward.TransitionAccepted, Bidder: buyer, Seller: seller, Price: big.NewInt(10000)})
	s.NoError(err)
	s.Empty(grants)
}
