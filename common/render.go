package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"articlehub/store"
)

// Render executes the named template with the current user, the CSRF token
// and any pending flash messages added to data.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	for _, key := range []string{"title", "query"} {
		if _, ok := data[key]; !ok {
			data[key] = ""
		}
	}
	data["currentUser"] = CurrentUser(c)
	data["csrf_token"] = CSRFToken(c)
	data["flashes"] = flashes(c)
	c.HTML(status, name, data)
}

func RenderError(c *gin.Context, status int, message string) {
	Render(c, status, "error.html", gin.H{
		"title":  http.StatusText(status),
		"status": status,
		"error":  message,
	})
}

// RenderStoreError answers with 404 when err is store.ErrNotFound and
// otherwise logs err and answers 500 without exposing it.
func RenderStoreError(c *gin.Context, logger *zap.Logger, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		RenderError(c, http.StatusNotFound, what+" not found")
		return
	}
	logger.Error("store failure",
		zap.String("path", c.Request.URL.Path),
		zap.String("what", what),
		zap.Error(err),
	)
	c.Error(err)
	RenderError(c, http.StatusInternalServerError, "Something went wrong, please try again later")
}

func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "Page not found")
}
