package contract

import (
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/service/chain"
)

type detector struct {
	erc721  Erc721Contract
	erc1155 Erc1155Contract
}

// NewKindDetector probes ERC165 for the 721 interface first, then 1155
func NewKindDetector(chainService chain.Client) asset.KindDetector {
	return &detector{
		erc721:  NewErc721(chainService),
		erc1155: NewErc1155(chainService),
	}
}

func (d *detector) DetectKind(c bCtx.Ctx, contract domain.Address) (asset.Kind, error) {
	if ok, err := d.erc721.Supports721Interface(c, contract); err != nil {
		c.WithFields(log.Fields{"err": err, "contract": contract}).Warn("failed to Supports721Interface")
		return asset.KindUnknown, err
	} else if ok {
		return asset.Kind721, nil
	}

	if ok, err := d.erc1155.Supports1155Interface(c, contract); err != nil {
		c.WithFields(log.Fields{"err": err, "contract": contract}).Warn("failed to Supports1155Interface")
		return asset.KindUnknown, err
	} else if ok {
		return asset.Kind1155, nil
	}

	return asset.KindUnknown, nil
}
