package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/service/cache/provider"
	"github.com/x-xyz/treemarket/service/cache/provider/primitive"
)

type cacheMiddlewareSuite struct {
	suite.Suite

	layer provider.Provider
}

func (s *cacheMiddlewareSuite) SetupTest() {
	s.layer = primitive.NewPrimitive("httpCacheTest", 1)
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) serve(target string, body string, status int) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("ctx", ctx.Background())

	h := func(c echo.Context) error {
		return c.String(status, body)
	}
	s.Require().NoError(CacheHttp(s.layer, 30*time.Second)(h)(c))
	return rec
}

func (s *cacheMiddlewareSuite) TestCacheMiddleware() {
	rec := s.serve("/assets/0x1?b=2&a=1", "first", http.StatusOK)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("first", rec.Body.String())

	// same query in another order hits the cache
	rec = s.serve("/assets/0x1?a=1&b=2", "second", http.StatusOK)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("first", rec.Body.String())

	rec = s.serve("/assets/0x2", "other", http.StatusOK)
	s.Equal("other", rec.Body.String())
}

func (s *cacheMiddlewareSuite) TestFailuresAreNotCached() {
	rec := s.serve("/assets/0x3", "boom", http.StatusNotFound)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.serve("/assets/0x3", "found", http.StatusOK)
	s.Equal("found", rec.Body.String())
}

func (s *cacheMiddlewareSuite) TestHitKeepsContentType() {
	rec := s.serve("/assets/0x4", "first", http.StatusOK)
	s.Equal(echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))

	rec = s.serve("/assets/0x4", "second", http.StatusOK)
	s.Equal("first", rec.Body.String())
	s.Equal(echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
}
