package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/middleware"
)

type handler struct {
	ledger escrow.Ledger
}

func New(e *echo.Echo, ledger escrow.Ledger) {
	h := &handler{ledger: ledger}

	g := e.Group("/escrow")
	g.GET("/held", h.totalHeld)
	g.GET("/held/:contract/:tokenId", h.held, middleware.IsValidAddress("contract"))
}

type heldResp struct {
	Held string `json:"held"`
}

func (h *handler) totalHeld(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	total, err := h.ledger.TotalHeld(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, heldResp{domain.AmountString(total)})
}

func (h *handler) held(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	key := domain.NewAssetKey(domain.Address(c.Param("contract")), domain.TokenId(c.Param("tokenId")))
	amount, err := h.ledger.Held(ctx, key)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, heldResp{domain.AmountString(amount)})
}
