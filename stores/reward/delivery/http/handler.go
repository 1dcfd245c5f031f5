package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/reward"
	"github.com/x-xyz/treemarket/middleware"
)

type handler struct {
	token  reward.Token
	symbol string
}

func New(e *echo.Echo, token reward.Token, symbol string) {
	h := &handler{token: token, symbol: symbol}

	g := e.Group("/rewards")
	g.GET("/token", h.getToken)
	g.GET("/:address", h.balanceOf, middleware.IsValidAddress("address"))
}

func (h *handler) getToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	owner, err := h.token.Owner(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		Symbol string         `json:"symbol"`
		Owner  domain.Address `json:"owner"`
	}{h.symbol, owner})
}

func (h *handler) balanceOf(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	bal, err := h.token.BalanceOf(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		Symbol  string `json:"symbol"`
		Balance string `json:"balance"`
	}{h.symbol, domain.AmountString(bal)})
}
