package middleware

import (
	"bufio"
	"bytes"
	"errors"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/service/cache"
	"github.com/x-xyz/treemarket/service/cache/provider"
)

const cacheMiddlewarePfx = "httpCache"

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// teeWriter copies the body into buf while passing it through
type teeWriter struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	return io.MultiWriter(w.ResponseWriter, w.buf).Write(b)
}

func (w *teeWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *teeWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

// responseKey hashes the path with its query in canonical order
func responseKey(req *http.Request) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(req.URL.Path))
	_, _ = h.Write([]byte{'?'})
	_, _ = h.Write([]byte(req.URL.Query().Encode()))
	return strconv.FormatUint(h.Sum64(), 36)
}

// CacheHttp serves successful GET responses from layer for ttl. Only mount it on routes whose
// payload changes rarely, such as registered asset kinds.
func CacheHttp(layer provider.Provider, ttl time.Duration) echo.MiddlewareFunc {
	responses := cache.New(cache.ServiceConfig{
		Ttl:   ttl,
		Pfx:   cacheMiddlewarePfx,
		Cache: layer,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Get("ctx").(ctx.Ctx)
			key := responseKey(c.Request())

			hit := cachedResponse{}
			if err := responses.Get(ctx, key, &hit); err == nil {
				return c.Blob(hit.Status, hit.ContentType, hit.Body)
			} else if !errors.Is(err, cache.ErrNotFound) {
				ctx.WithFields(log.Fields{"err": err, "key": key}).Warn("failed to read http cache")
			}

			w := &teeWriter{ResponseWriter: c.Response().Writer, buf: new(bytes.Buffer)}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			status := w.status
			if status == 0 {
				status = c.Response().Status
			}
			if status >= http.StatusBadRequest {
				return nil
			}
			entry := cachedResponse{
				Status:      status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        w.buf.Bytes(),
			}
			if err := responses.Set(ctx, key, entry); err != nil {
				ctx.WithFields(log.Fields{"err": err, "key": key}).Warn("failed to fill http cache")
			}
			return nil
		}
	}
}
