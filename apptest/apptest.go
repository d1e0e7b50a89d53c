// Package apptest wires a full router against an in-memory store for
// handler tests.
package apptest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"articlehub/common"
	"articlehub/database"
	"articlehub/models"
	"articlehub/store"
	"articlehub/views"
)

// NewStore returns a migrated in-memory SQLite store.
func NewStore(t *testing.T) *store.GormStore {
	t.Helper()

	db, err := common.OpenSqlite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.NewGormStore(db)
	t.Cleanup(func() { st.Close(context.Background()) })
	return st
}

// NewRouter builds a router the way serve does, with extra
// /__test/login/:id and /__test/csrf routes that open a session for a user
// id and hand out the session's CSRF token.
func NewRouter(t *testing.T, st store.Store, register ...func(*gin.Engine)) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	tmpl, err := views.Load("http://localhost:8080")
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)

	router.Use(sessions.Sessions("test-session", cookie.NewStore([]byte("secret"))))
	router.Use(common.CSRF("test-csrf-secret"))
	router.Use(common.LoadUser(st, zap.NewNop()))

	router.GET("/__test/csrf", func(c *gin.Context) {
		c.String(http.StatusOK, common.CSRFToken(c))
	})

	router.GET("/__test/login/:id", func(c *gin.Context) {
		user, err := st.GetUserByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.String(http.StatusNotFound, err.Error())
			return
		}
		common.StartSession(c, user)
		c.String(http.StatusOK, "ok")
	})

	for _, r := range register {
		r(router)
	}
	router.NoRoute(common.NotFound)
	return router
}

// CreateUser stores a user with the given role and password.
func CreateUser(t *testing.T, st store.Store, username, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        username + "@example.com",
		Role:         role,
	}
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// Client carries session cookies from one request to the next.
type Client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func NewClient(t *testing.T, handler http.Handler) *Client {
	return &Client{t: t, handler: handler, cookies: map[string]*http.Cookie{}}
}

func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *Client) Get(path string) *httptest.ResponseRecorder {
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm submits form the way a browser would, filling in the session's
// CSRF token unless form already carries a _csrf field.
func (c *Client) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	if form.Get("_csrf") == "" {
		filled := url.Values{}
		for k, v := range form {
			filled[k] = v
		}
		filled.Set("_csrf", c.CSRFToken())
		form = filled
	}
	return c.PostFormRaw(path, form)
}

// PostFormRaw submits form exactly as given.
func (c *Client) PostFormRaw(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// CSRFToken returns the token for the client's current session.
func (c *Client) CSRFToken() string {
	c.t.Helper()
	w := c.Get("/__test/csrf")
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		c.t.Fatalf("csrf token: status %d", w.Code)
	}
	return w.Body.String()
}

// LoginAs opens a session for user without going through the login form.
func (c *Client) LoginAs(user *models.User) {
	c.t.Helper()
	if w := c.Get("/__test/login/" + user.ID); w.Code != http.StatusOK {
		c.t.Fatalf("login as %s: status %d", user.Username, w.Code)
	}
}

// Follow requests the Location of a redirect response.
func (c *Client) Follow(w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	c.t.Helper()
	if w.Code != http.StatusFound && w.Code != http.StatusSeeOther {
		c.t.Fatalf("expected redirect, got %d", w.Code)
	}
	return c.Get(w.Header().Get("Location"))
}
