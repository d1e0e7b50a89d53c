package cache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves GET requests for namespace from the cache, keyed by the
// route parameter param. Requests for which bypass returns true (logged-in
// visitors) are neither served from nor written to the cache.
func (p *PageCache) Middleware(namespace, param string, bypass func(*gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || (bypass != nil && bypass(c)) {
			c.Next()
			return
		}

		key := c.Param(param)
		if key == "" {
			c.Next()
			return
		}

		if cached, found := p.Read(namespace, key); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		// Pages that touched the session (e.g. showed a flash) are
		// specific to this visitor.
		if c.Writer.Status() == http.StatusOK &&
			c.Writer.Header().Get("Content-Type") == "text/html; charset=utf-8" &&
			c.Writer.Header().Get("Set-Cookie") == "" {
			p.Write(namespace, key, writer.body.String())
		}
	}
}
