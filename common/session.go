package common

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"articlehub/models"
	"articlehub/store"
)

const (
	sessionUserKey = "user_id"
	contextUserKey = "user"
)

const (
	MsgLoginRequired = "Please log in to continue"
	MsgNotAuthorized = "You are not authorized to view this page"
	MsgCannotEdit    = "You are not authorized to edit this material"
)

// LoadUser resolves the session's user id into a *models.User for the rest
// of the chain. A session pointing at a user that no longer exists is
// cleared.
func LoadUser(st store.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserKey).(string)
		if !ok || userID == "" {
			c.Next()
			return
		}

		user, err := st.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Error("loading session user", zap.String("user_id", userID), zap.Error(err))
			}
			session.Delete(sessionUserKey)
			session.Save()
			c.Next()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the logged in user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func StartSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	c.Set(contextUserKey, user)
	return session.Save()
}

func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	c.Set(contextUserKey, (*models.User)(nil))
	return session.Save()
}

// Flash queues msg for the next rendered page. It must run before the
// response headers are written.
func Flash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	session.Save()
}

func RedirectWithFlash(c *gin.Context, location, msg string) {
	Flash(c, msg)
	c.Redirect(http.StatusFound, location)
}

func flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save()

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

func RequireLogin(c *gin.Context) {
	if CurrentUser(c) == nil {
		RedirectWithFlash(c, "/login", MsgLoginRequired)
		c.Abort()
		return
	}
	c.Next()
}

// RequireCapability sends anyone whose role lacks capability back to
// redirectTo with the flash msg. Anonymous visitors go to the login page
// first.
func RequireCapability(capability models.Capability, redirectTo, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			RedirectWithFlash(c, "/login", MsgLoginRequired)
			c.Abort()
			return
		}
		if !user.Can(capability) {
			RedirectWithFlash(c, redirectTo, msg)
			c.Abort()
			return
		}
		c.Next()
	}
}
