package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"articlehub/common"
	"articlehub/models"
	"articlehub/store"
)

const (
	MsgUsernameTaken = "Username already exists"
	MsgSignedUp      = "You have signed up successfully!"
	MsgBadLogin      = "Incorrect Username/password, Please try again"
	MsgLoggedOut     = "You have logged out successfully!"
)

// reservedUsernames cannot be registered through the sign-up form.
var reservedUsernames = map[string]bool{
	"admin": true,
}

// PasswordCost is the bcrypt cost used for new accounts.
var PasswordCost = bcrypt.DefaultCost

type AccountModule struct {
	store  store.Store
	logger *zap.Logger
}

func NewAccountModule(st store.Store, logger *zap.Logger) *AccountModule {
	return &AccountModule{store: st, logger: logger}
}

func (a *AccountModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/registration", a.registrationPage)
	router.POST("/registration", a.registrationPost)
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/logout", a.logout)

	router.GET("/profile/:username", common.RequireLogin, a.profile)
	router.POST("/profile/:username", common.RequireLogin, a.profile)
}

type registrationForm struct {
	Username string `form:"username" binding:"required,min=4,max=20,word"`
	Email    string `form:"email" binding:"required,min=6,max=50"`
	Password string `form:"password" binding:"required,word"`
	Confirm  string `form:"confirm" binding:"eqfield=Password"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (a *AccountModule) registrationPage(c *gin.Context) {
	common.Render(c, http.StatusOK, "sign-up.html", gin.H{
		"title":    "Register",
		"username": "",
		"email":    "",
	})
}

func (a *AccountModule) registrationPost(c *gin.Context) {
	var form registrationForm
	if err := c.ShouldBind(&form); err != nil {
		common.Render(c, http.StatusBadRequest, "sign-up.html", gin.H{
			"title":    "Register",
			"username": form.Username,
			"email":    form.Email,
			"errors":   common.ValidationMessages(err),
		})
		return
	}

	ctx := c.Request.Context()
	username := strings.ToLower(form.Username)

	if reservedUsernames[username] {
		common.RedirectWithFlash(c, "/registration", MsgUsernameTaken)
		return
	}

	_, err := a.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		common.RedirectWithFlash(c, "/registration", MsgUsernameTaken)
		return
	case !errors.Is(err, store.ErrNotFound):
		common.RenderStoreError(c, a.logger, err, "User")
		return
	}

	hash, err := hashPassword(form.Password)
	if err != nil {
		a.logger.Error("hashing password", zap.Error(err))
		common.RenderError(c, http.StatusInternalServerError, "Something went wrong, please try again later")
		return
	}

	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(form.Email),
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same name.
		if errors.Is(err, store.ErrDuplicate) {
			common.RedirectWithFlash(c, "/registration", MsgUsernameTaken)
			return
		}
		common.RenderStoreError(c, a.logger, err, "User")
		return
	}

	if err := common.StartSession(c, user); err != nil {
		a.logger.Error("saving session", zap.Error(err))
	}
	a.logger.Info("user registered", zap.String("username", user.Username))

	common.RedirectWithFlash(c, "/profile/"+user.Username, MsgSignedUp)
}

func (a *AccountModule) loginPage(c *gin.Context) {
	if user := common.CurrentUser(c); user != nil {
		c.Redirect(http.StatusFound, "/profile/"+user.Username)
		return
	}
	common.Render(c, http.StatusOK, "login.html", gin.H{
		"title":    "Login",
		"username": "",
	})
}

func (a *AccountModule) loginPost(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		common.RedirectWithFlash(c, "/login", MsgBadLogin)
		return
	}

	user, err := a.store.GetUserByUsername(c.Request.Context(), strings.ToLower(form.Username))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			common.RenderStoreError(c, a.logger, err, "User")
			return
		}
		common.RedirectWithFlash(c, "/login", MsgBadLogin)
		return
	}

	if !checkPasswordHash(form.Password, user.PasswordHash) {
		common.RedirectWithFlash(c, "/login", MsgBadLogin)
		return
	}

	if err := common.StartSession(c, user); err != nil {
		a.logger.Error("saving session", zap.Error(err))
	}
	common.RedirectWithFlash(c, "/profile/"+user.Username, "Welcome back "+form.Username+"!")
}

func (a *AccountModule) logout(c *gin.Context) {
	if err := common.EndSession(c); err != nil {
		a.logger.Error("clearing session", zap.Error(err))
	}
	common.RedirectWithFlash(c, "/login", MsgLoggedOut)
}

// profile always shows the session user's own contributions.
func (a *AccountModule) profile(c *gin.Context) {
	user := common.CurrentUser(c)
	if c.Param("username") != user.Username {
		c.Redirect(http.StatusFound, "/profile/"+user.Username)
		return
	}

	articles, err := a.store.ListArticlesByCreator(c.Request.Context(), user.Username)
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Articles")
		return
	}

	common.Render(c, http.StatusOK, "profile.html", gin.H{
		"title":    "Profile",
		"username": user.Username,
		"articles": articles,
	})
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// EnsureAdmin gives username the admin role, creating the account first
// when it does not exist. It reports whether a new account was created.
func EnsureAdmin(ctx context.Context, st store.Store, username, email, password string) (*models.User, bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, false, errors.New("username is required")
	}

	user, err := st.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if err := st.SetUserRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, false, err
		}
		user.Role = models.RoleAdmin
		return user, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err
	}

	if password == "" {
		return nil, false, errors.New("password is required for a new account")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hashing password: %w", err)
	}

	user = &models.User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
