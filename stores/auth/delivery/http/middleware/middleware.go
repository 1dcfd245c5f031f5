package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/delivery"
	"github.com/x-xyz/treemarket/domain"
)

type AuthMiddleware struct {
	auth           domain.AuthUsecase
	adminAddresses []domain.Address
}

func New(auth domain.AuthUsecase, adminAddresses []domain.Address) *AuthMiddleware {
	return &AuthMiddleware{
		auth:           auth,
		adminAddresses: adminAddresses,
	}
}

// Auth requires a bearer token and stores the caller under "address"
func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, _ := c.Get("address").(domain.Address)
			for _, admin := range m.adminAddresses {
				if admin.Equals(caller) {
					return next(c)
				}
			}
			return delivery.MakeJsonResp(c, http.StatusForbidden, domain.ErrUnauthorized)
		}
	}
}

// validateAuthToken also tags the request ctx with the caller so later logs carry it
func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	reqCtx := c.Get("ctx").(ctx.Ctx)
	caller, err := m.auth.ParseToken(reqCtx, key)
	if err != nil {
		reqCtx.WithField("err", err).Warn("auth.ParseToken failed")
		return false, nil
	}
	c.Set("address", caller)
	c.Set("ctx", ctx.WithValue(reqCtx, "caller", caller))
	return true, nil
}
