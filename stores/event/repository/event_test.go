package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/event"
)

func TestMakeQuery(t *testing.T) {
	req := require.New(t)
	im := &impl{}

	options, err := event.GetFindAllOptions(
		event.WithAsset(domain.NewAssetKey("0xAB", "3")),
		event.WithType(event.TypeBidAccepted),
	)
	req.NoError(err)
	req.Equal(bson.M{
		"contract": domain.Address("0xab"),
		"tokenId":  domain.TokenId("3"),
		"type":     event.TypeBidAccepted,
	}, im.makeQuery(options))

	options, err = event.GetFindAllOptions()
	req.NoError(err)
	req.Equal(bson.M{}, im.makeQuery(options))
}
