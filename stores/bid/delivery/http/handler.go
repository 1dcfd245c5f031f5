package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/middleware"
	authMiddleware "github.com/x-xyz/treemarket/stores/auth/delivery/http/middleware"
)

type handler struct {
	bid bid.UseCase
}

func New(e *echo.Echo, bu bid.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{bid: bu}

	g := e.Group("/bids")
	g.GET("", h.list)
	g.GET("/:contract/:tokenId", h.getBid, middleware.IsValidAddress("contract"))
	g.POST("/:contract/:tokenId", h.placeBid, middleware.IsValidAddress("contract"), authMiddleware.Auth())
	g.DELETE("/:contract/:tokenId", h.cancelBid, middleware.IsValidAddress("contract"), authMiddleware.Auth())
	g.POST("/:contract/:tokenId/accept", h.acceptBid, middleware.IsValidAddress("contract"), authMiddleware.Auth())
	g.POST("/:contract/:tokenId/reject", h.rejectBid, middleware.IsValidAddress("contract"), authMiddleware.Auth())

	t := e.Group("/treasury")
	t.GET("", h.getTreasury)
	t.PUT("", h.updateTreasury, authMiddleware.Auth())
}

func assetKey(c echo.Context) domain.AssetKey {
	return domain.NewAssetKey(domain.Address(c.Param("contract")), domain.TokenId(c.Param("tokenId")))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Contract *domain.Address `query:"contract"`
		Bidder   *domain.Address `query:"bidder"`
		Offset   int32           `query:"offset"`
		Limit    int32           `query:"limit"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []bid.FindAllOptionsFunc{}
	if p.Contract != nil {
		opts = append(opts, bid.WithContract(*p.Contract))
	}
	if p.Bidder != nil {
		opts = append(opts, bid.WithBidder(*p.Bidder))
	}
	if p.Limit > 0 {
		opts = append(opts, bid.WithPagination(p.Offset, p.Limit))
	}

	res, err := h.bid.List(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.bid.GetBid(ctx, assetKey(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) placeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	// Value is what the caller attaches and must equal Price
	type params struct {
		Price string `json:"price" validate:"required,amount"`
		Value string `json:"value" validate:"required,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	price, err := domain.ParseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	attached, err := domain.ParseAmount(p.Value)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.bid.PlaceBid(ctx, caller, assetKey(c), price, attached)
	if err != nil {
		ctx.WithField("err", err).Warn("bid.PlaceBid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) cancelBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.bid.CancelBid(ctx, caller, assetKey(c)); err != nil {
		ctx.WithField("err", err).Warn("bid.CancelBid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) acceptBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Price string `json:"price" validate:"required,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	price, err := domain.ParseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.bid.AcceptBid(ctx, caller, assetKey(c), price)
	if err != nil {
		ctx.WithField("err", err).Warn("bid.AcceptBid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) rejectBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.bid.RejectBid(ctx, caller, assetKey(c)); err != nil {
		ctx.WithField("err", err).Warn("bid.RejectBid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) getTreasury(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	addr, err := h.bid.Treasury(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		Treasury domain.Address `json:"treasury"`
	}{addr})
}

func (h *handler) updateTreasury(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Address string `json:"address" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.bid.UpdateTreasuryAddress(ctx, caller, domain.Address(p.Address)); err != nil {
		ctx.WithField("err", err).Warn("bid.UpdateTreasuryAddress failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
