package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	hcdomain "github.com/x-xyz/treemarket/domain/healthcheck"
)

type handler struct {
	hc hcdomain.HealthCheckUsecase
}

func New(e *echo.Echo, hc hcdomain.HealthCheckUsecase) {
	h := &handler{hc: hc}
	e.GET("/health", h.check)
}

func (h *handler) check(c echo.Context) error {
	report := h.hc.Check(c.Get("ctx").(ctx.Ctx))
	if !report.Healthy() {
		return delivery.MakeJsonResp(c, http.StatusServiceUnavailable, report)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, report)
}
