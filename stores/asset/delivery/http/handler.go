package http

import (
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/middleware"
	"github.com/x-xyz/treemarket/service/cache/provider"
	authMiddleware "github.com/x-xyz/treemarket/stores/auth/delivery/http/middleware"
)

const kindCacheTTL = 5 * time.Minute

type handler struct {
	asset asset.UseCase
}

type Config struct {
	// AllowTestMint mounts the mint route that stands in for a test token contract
	AllowTestMint bool
	// KindCache backs the response cache of contract kind lookups
	KindCache provider.Provider
}

func New(e *echo.Echo, au asset.UseCase, authMiddleware *authMiddleware.AuthMiddleware, cfg Config) {
	h := &handler{asset: au}

	g := e.Group("/assets")
	g.GET("/:contract", h.getKind, middleware.IsValidAddress("contract"), middleware.CacheHttp(cfg.KindCache, kindCacheTTL))
	g.POST("/:contract", h.register, middleware.IsValidAddress("contract"), authMiddleware.Auth(), authMiddleware.IsAdmin())
	g.GET("/:contract/approval/:owner", h.isApproved, middleware.IsValidAddress("contract"), middleware.IsValidAddress("owner"))
	g.POST("/:contract/approval", h.setApproval, middleware.IsValidAddress("contract"), authMiddleware.Auth())
	g.GET("/:contract/:tokenId/holders", h.holders, middleware.IsValidAddress("contract"))
	if cfg.AllowTestMint {
		g.POST("/:contract/:tokenId/mint", h.mint, middleware.IsValidAddress("contract"), authMiddleware.Auth())
	}
}

func parseKind(s string) (asset.Kind, bool) {
	switch strings.ToLower(s) {
	case "721", "erc721":
		return asset.Kind721, true
	case "1155", "erc1155":
		return asset.Kind1155, true
	}
	return asset.KindUnknown, false
}

func (h *handler) getKind(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	kind, err := h.asset.Kind(ctx, domain.Address(c.Param("contract")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		Contract domain.Address `json:"contract"`
		Kind     asset.Kind     `json:"kind"`
	}{domain.Address(c.Param("contract")).ToLower(), kind})
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Kind string `json:"kind" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	kind, ok := parseKind(p.Kind)
	if !ok {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "kind must be erc721 or erc1155")
	}

	if err := h.asset.Register(ctx, domain.Address(c.Param("contract")), kind); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) isApproved(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	ok, err := h.asset.IsApprovedForAll(ctx, domain.Address(c.Param("owner")), domain.Address(c.Param("contract")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		Approved bool `json:"approved"`
	}{ok})
}

func (h *handler) setApproval(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Approved *bool `json:"approved" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.asset.SetApprovalForAll(ctx, caller, domain.Address(c.Param("contract")), *p.Approved); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) holders(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	key := domain.NewAssetKey(domain.Address(c.Param("contract")), domain.TokenId(c.Param("tokenId")))
	res, err := h.asset.Holders(ctx, key)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// mint credits the caller with a fresh token, amount defaults to one
func (h *handler) mint(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Amount string `json:"amount" validate:"omitempty,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	amount := big.NewInt(1)
	if p.Amount != "" {
		n, err := domain.ParseAmount(p.Amount)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
		}
		amount = n
	}

	key := domain.NewAssetKey(domain.Address(c.Param("contract")), domain.TokenId(c.Param("tokenId")))
	if err := h.asset.Deposit(ctx, key, caller, amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, key)
}
