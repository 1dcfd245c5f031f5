package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/payment"
	"github.com/x-xyz/treemarket/middleware"
	authMiddleware "github.com/x-xyz/treemarket/stores/auth/delivery/http/middleware"
)

type handler struct {
	payment payment.UseCase
}

// New mounts the account routes. Deposits credit funds out of thin air and are only mounted
// when allowDeposit is set, the way test networks hand out coins.
func New(e *echo.Echo, pu payment.UseCase, authMiddleware *authMiddleware.AuthMiddleware, allowDeposit bool) {
	h := &handler{payment: pu}

	g := e.Group("/accounts")
	g.GET("/:address/balance", h.balance, middleware.IsValidAddress("address"))
	g.POST("/withdraw", h.withdraw, authMiddleware.Auth())
	if allowDeposit {
		g.POST("/deposit", h.deposit, authMiddleware.Auth())
	}
}

type amountParams struct {
	Amount string `json:"amount" validate:"required,amount"`
}

func (h *handler) bindAmount(c echo.Context) (*amountParams, error) {
	p := &amountParams{}
	if err := c.Bind(p); err != nil {
		return nil, err
	}
	if err := c.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (h *handler) balance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	bal, err := h.payment.Balance(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		Balance string `json:"balance"`
	}{domain.AmountString(bal)})
}

func (h *handler) deposit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	p, err := h.bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	amount, err := domain.ParseAmount(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	acc, err := h.payment.Deposit(ctx, caller, amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, acc)
}

func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	p, err := h.bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	amount, err := domain.ParseAmount(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	acc, err := h.payment.Withdraw(ctx, caller, amount)
	if err != nil {
		ctx.WithField("err", err).Warn("payment.Withdraw failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, acc)
}
