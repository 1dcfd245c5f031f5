package usecase

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/escrow"
	escrowMocks "github.com/x-xyz/treemarket/domain/escrow/mocks"
	paymentMocks "github.com/x-xyz/treemarket/domain/payment/mocks"
)

const (
	nft      = domain.Address("0x00000000000000000000000000000000000000f1")
	bidder   = domain.Address("0x00000000000000000000000000000000000000b1")
	seller   = domain.Address("0x00000000000000000000000000000000000000a1")
	treasury = domain.Address("0x00000000000000000000000000000000000000c1")
)

type escrowSuite struct {
	suite.Suite

	repo *escrowMocks.Repo
	rail *paymentMocks.Rail
	im   *impl
	key  domain.AssetKey
	now  time.Time
}

func TestEscrowSuite(t *testing.T) {
	suite.Run(t, new(escrowSuite))
}

func (s *escrowSuite) SetupTest() {
	s.repo = &escrowMocks.Repo{}
	s.rail = &paymentMocks.Rail{}
	s.im = New(&EscrowUseCaseCfg{Repo: s.repo, Rail: s.rail}).(*impl)
	s.key = domain.NewAssetKey(nft, "1")
	s.now = time.Unix(1660000000, 0)
	timeNow = func() time.Time { return s.now }
}

func (s *escrowSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
	s.rail.AssertExpectations(s.T())
	timeNow = time.Now
}

func (s *escrowSuite) entry(amount string) *escrow.Entry {
	return &escrow.Entry{Contract: nft, TokenId: "1", Depositor: bidder, Amount: amount}
}

func (s *escrowSuite) TestHold() {
	c := ctx.Background()
	amount := big.NewInt(42)
	s.repo.On("FindOne", c, s.key).Return(nil, domain.ErrNotFound).Once()
	s.rail.On("Collect", c, bidder, amount).Return(nil).Once()
	s.repo.On("Insert", c, &escrow.Entry{
		Contract:  nft,
		TokenId:   "1",
		Depositor: bidder,
		Amount:    "42",
		CreatedAt: s.now,
	}).Return(nil).Once()

	s.NoError(s.im.Hold(c, s.key, bidder, amount))
}

func (s *escrowSuite) TestHoldTwiceConflicts() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(s.entry("1"), nil).Once()
	s.ErrorIs(s.im.Hold(c, s.key, bidder, big.NewInt(2)), domain.ErrConflict)
}

func (s *escrowSuite) TestHoldCollectFails() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(nil, domain.ErrNotFound).Once()
	s.rail.On("Collect", c, bidder, big.NewInt(5)).Return(domain.ErrInsufficientFunds).Once()
	s.ErrorIs(s.im.Hold(c, s.key, bidder, big.NewInt(5)), domain.ErrTransferFailed)
}

func (s *escrowSuite) TestRefund() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(s.entry("7"), nil).Once()
	s.rail.On("Pay", c, bidder, big.NewInt(7)).Return(nil).Once()
	s.repo.On("Remove", c, s.key).Return(nil).Once()

	e, err := s.im.Refund(c, s.key)
	s.NoError(err)
	s.Equal(bidder, e.Depositor)
}

func (s *escrowSuite) TestRefundPayFailsKeepsEntry() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(s.entry("7"), nil).Once()
	s.rail.On("Pay", c, bidder, big.NewInt(7)).Return(domain.ErrTransferFailed).Once()

	_, err := s.im.Refund(c, s.key)
	s.ErrorIs(err, domain.ErrTransferFailed)
}

func (s *escrowSuite) TestDisburse() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(s.entry("100"), nil).Once()
	s.rail.On("Pay", c, treasury, big.NewInt(3)).Return(nil).Once()
	s.rail.On("Pay", c, seller, big.NewInt(97)).Return(nil).Once()
	s.repo.On("Remove", c, s.key).Return(nil).Once()

	_, err := s.im.Disburse(c, s.key, []escrow.Payout{
		{To: treasury, Amount: big.NewInt(3)},
		{To: seller, Amount: big.NewInt(97)},
	})
	s.NoError(err)
}

func (s *escrowSuite) TestDisburseSkipsZeroPayout() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(s.entry("100"), nil).Once()
	s.rail.On("Pay", c, seller, big.NewInt(100)).Return(nil).Once()
	s.repo.On("Remove", c, s.key).Return(nil).Once()

	_, err := s.im.Disburse(c, s.key, []escrow.Payout{
		{To: treasury, Amount: big.NewInt(0)},
		{To: seller, Amount: big.NewInt(100)},
	})
	s.NoError(err)
}

func (s *escrowSuite) TestDisburseMustConserve() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(s.entry("100"), nil).Once()

	_, err := s.im.Disburse(c, s.key, []escrow.Payout{{To: seller, Amount: big.NewInt(99)}})
	s.ErrorIs(err, domain.ErrConservation)
}

func (s *escrowSuite) TestHeld() {
	c := ctx.Background()
	s.repo.On("FindOne", c, s.key).Return(nil, domain.ErrNotFound).Once()
	held, err := s.im.Held(c, s.key)
	s.NoError(err)
	s.Equal(0, held.Sign())

	s.repo.On("FindAll", c).Return([]*escrow.Entry{s.entry("5"), s.entry("6")}, nil).Once()
	total, err := s.im.TotalHeld(c)
	s.NoError(err)
	s.Equal(big.NewInt(11), total)
}
