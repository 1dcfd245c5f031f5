package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/event"
)

type handler struct {
	event event.UseCase
}

func New(e *echo.Echo, eu event.UseCase) {
	h := &handler{event: eu}

	e.GET("/events", h.list)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Contract *domain.Address `query:"contract"`
		TokenId  *domain.TokenId `query:"tokenId"`
		Type     *event.Type     `query:"type"`
		Offset   int32           `query:"offset"`
		Limit    int32           `query:"limit"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []event.FindAllOptionsFunc{}
	switch {
	case p.Contract != nil && p.TokenId != nil:
		opts = append(opts, event.WithAsset(domain.NewAssetKey(*p.Contract, *p.TokenId)))
	case p.Contract != nil:
		opts = append(opts, event.WithContract(*p.Contract))
	}
	if p.Type != nil {
		opts = append(opts, event.WithType(*p.Type))
	}
	if p.Limit > 0 {
		opts = append(opts, event.WithPagination(p.Offset, p.Limit))
	}

	res, err := h.event.List(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
