package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMakeBsonM(t *testing.T) {
	req := require.New(t)

	type holdingId struct {
		Contract string `bson:"contract"`
		TokenId  string `bson:"tokenId"`
		Owner    string `bson:"owner"`
	}

	m, err := MakeBsonM(holdingId{Contract: "0xabc", TokenId: "1"})
	req.NoError(err)
	req.Equal(bson.M{"contract": "0xabc", "tokenId": "1"}, m, "zero fields are left out")

	type patchable struct {
		Approved *bool   `bson:"approved,omitempty"`
		Note     *string `bson:"note,omitempty"`
		Skipped  string  `bson:"-"`
	}
	f := false
	m, err = MakeBsonM(&patchable{Approved: &f, Skipped: "x"})
	req.NoError(err)
	req.Equal(bson.M{"approved": false}, m, "pointers are unpacked")

	_, err = MakeBsonM("0xabc")
	req.ErrorIs(err, ErrNotStruct)
}
