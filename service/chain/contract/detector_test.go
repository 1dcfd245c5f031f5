package contract

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	baseabi "github.com/x-xyz/treemarket/base/abi"
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/mocks"
	"github.com/x-xyz/treemarket/service/chain"
)

const nft = domain.Address("0x71c4658acc7b53ee814a29ce31100ff85ca23ca7")

func probes(interfaceId string) interface{} {
	id := common.Hex2Bytes(interfaceId)
	return mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return len(msg.Data) >= 8 && bytes.Equal(msg.Data[4:8], id)
	})
}

func packBool(t *testing.T, v bool) []byte {
	out, err := baseabi.ERC721TokenABI.Methods["supportsInterface"].Outputs.Pack(v)
	require.NoError(t, err)
	return out
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		desc     string
		is721    bool
		is1155   bool
		expected asset.Kind
	}{
		{desc: "erc721", is721: true, expected: asset.Kind721},
		{desc: "erc1155", is1155: true, expected: asset.Kind1155},
		{desc: "neither", expected: asset.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			req := require.New(t)
			eth := &mocks.EthClientRepo{}
			eth.On("CallContract", mock.Anything, probes("80ac58cd"), (*big.Int)(nil)).Return(packBool(t, tt.is721), nil).Maybe()
			eth.On("CallContract", mock.Anything, probes("d9b67a26"), (*big.Int)(nil)).Return(packBool(t, tt.is1155), nil).Maybe()

			kind, err := NewKindDetector(chain.NewClient(eth)).DetectKind(bCtx.Background(), nft)
			req.NoError(err)
			req.Equal(tt.expected, kind)
		})
	}
}

func TestDetectKindCallFails(t *testing.T) {
	req := require.New(t)
	eth := &mocks.EthClientRepo{}
	boom := errors.New("execution reverted")
	eth.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom).Once()

	kind, err := NewKindDetector(chain.NewClient(eth)).DetectKind(bCtx.Background(), nft)
	req.ErrorIs(err, boom)
	req.Equal(asset.KindUnknown, kind)
	eth.AssertExpectations(t)
}

func TestOwnerOf(t *testing.T) {
	req := require.New(t)
	eth := &mocks.EthClientRepo{}
	owner := common.HexToAddress("0x00000000000000000000000000000000000000AB")
	out, err := baseabi.ERC721TokenABI.Methods["ownerOf"].Outputs.Pack(owner)
	req.NoError(err)
	eth.On("CallContract", mock.Anything, mock.Anything, (*big.Int)(nil)).Return(out, nil).Once()

	res, err := NewErc721(chain.NewClient(eth)).OwnerOf(bCtx.Background(), nft, common.Big1)
	req.NoError(err)
	req.Equal(domain.Address("0x00000000000000000000000000000000000000ab"), res)
}
