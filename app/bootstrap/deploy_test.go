package bootstrap

import (
	"math/big"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/service/memstore"
)

const (
	deployer = domain.Address("0x00000000000000000000000000000000000000d0")
	operator = domain.Address("0x00000000000000000000000000000000000000e0")
	seller   = domain.Address("0x00000000000000000000000000000000000000a1")
	buyer    = domain.Address("0x00000000000000000000000000000000000000a2")
	nft      = domain.Address("0x00000000000000000000000000000000000000f1")
)

type deploySuite struct {
	suite.Suite

	services *Services
	cfg      *DeployCfg
}

func TestDeploySuite(t *testing.T) {
	suite.Run(t, new(deploySuite))
}

func (s *deploySuite) SetupTest() {
	viper.Reset()
	viper.Set("marketplace.operator", string(operator))
	viper.Set("marketplace.owner", string(deployer))
	viper.Set("marketplace.treasury", string(deployer))
	viper.Set("marketplace.feeBps", 250)
	viper.Set("deploy.contracts", []map[string]interface{}{{"address": string(nft), "kind": 721}})

	cfg, err := LoadDeployCfg()
	s.Require().NoError(err)
	s.cfg = cfg
	s.services = NewServices(ctx.Background(), &ServicesCfg{Storage: MemoryStorage(memstore.New())})
}

func (s *deploySuite) TearDownTest() {
	viper.Reset()
}

func (s *deploySuite) TestLoadDeployCfgNeedsAddresses() {
	viper.Set("marketplace.owner", "")
	_, err := LoadDeployCfg()
	s.ErrorIs(err, domain.ErrInvalidAddress)
}

func (s *deploySuite) TestDeployIsIdempotent() {
	c := ctx.Background()
	s.Require().NoError(Deploy(c, s.services, s.cfg))
	s.Require().NoError(Deploy(c, s.services, s.cfg))

	owner, err := s.services.Token.Owner(c)
	s.NoError(err)
	s.Equal(operator, owner)

	addr, err := s.services.Bids.Treasury(c)
	s.NoError(err)
	s.Equal(deployer, addr)

	kind, err := s.services.Assets.Kind(c, nft)
	s.NoError(err)
	s.Equal(asset.Kind721, kind)
}

func (s *deploySuite) TestSeededMemoryStoreSettlesBids() {
	c := ctx.Background()
	s.Require().NoError(Deploy(c, s.services, s.cfg))

	key := domain.NewAssetKey(nft, "1")
	s.Require().NoError(s.services.Assets.Deposit(c, key, seller, nil))
	s.Require().NoError(s.services.Assets.SetApprovalForAll(c, seller, nft, true))
	_, err := s.services.Payments.Deposit(c, buyer, big.NewInt(1000))
	s.Require().NoError(err)

	_, err = s.services.Bids.PlaceBid(c, buyer, key, big.NewInt(1000), big.NewInt(1000))
	s.Require().NoError(err)
	settlement, err := s.services.Bids.AcceptBid(c, seller, key, big.NewInt(1000))
	s.Require().NoError(err)
	s.Equal("25", settlement.Fee)
	s.Equal(deployer, settlement.Treasury)

	s.NoError(s.services.Bids.UpdateTreasuryAddress(c, deployer, seller))
}
