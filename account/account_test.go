package account

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"articlehub/apptest"
	"articlehub/common"
	"articlehub/models"
	"articlehub/store"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

func setup(t *testing.T) (*store.GormStore, *apptest.Client) {
	st := apptest.NewStore(t)
	router := apptest.NewRouter(t, st, NewAccountModule(st, zap.NewNop()).RegisterRoutes)
	return st, apptest.NewClient(t, router)
}

func registration(username, email, password, confirm string) url.Values {
	return url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
		"confirm":  {confirm},
	}
}

func TestPasswordHashing(t *testing.T) {
	password := "testpassword123"

	hash, err := hashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, checkPasswordHash(password, hash))
	assert.False(t, checkPasswordHash("wrongpassword", hash))
}

func TestRegistration_Success(t *testing.T) {
	st, client := setup(t)

	w := client.PostForm("/registration", registration("Alice_1", "Alice@Example.com", "secret_pw", "secret_pw"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice_1", w.Header().Get("Location"))

	page := client.Follow(w)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), MsgSignedUp)
	assert.Contains(t, page.Body.String(), "alice_1's profile")

	user, err := st.GetUserByUsername(context.Background(), "alice_1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret_pw", user.PasswordHash)
	assert.True(t, checkPasswordHash("secret_pw", user.PasswordHash))
}

func TestRegistration_DuplicateUsername(t *testing.T) {
	_, client := setup(t)

	w := client.PostForm("/registration", registration("alice", "alice@example.com", "secret", "secret"))
	require.Equal(t, http.StatusFound, w.Code)
	client.Get("/logout")

	w = client.PostForm("/registration", registration("ALICE", "other@example.com", "secret", "secret"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/registration", w.Header().Get("Location"))
	assert.Contains(t, client.Follow(w).Body.String(), MsgUsernameTaken)
}

func TestRegistration_ReservedUsername(t *testing.T) {
	st, client := setup(t)

	w := client.PostForm("/registration", registration("Admin", "admin@example.com", "secret", "secret"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/registration", w.Header().Get("Location"))
	assert.Contains(t, client.Follow(w).Body.String(), MsgUsernameTaken)

	_, err := st.GetUserByUsername(context.Background(), "admin")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegistration_Validation(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"short username", registration("abc", "alice@example.com", "secret", "secret"), "Username must be at least 4 characters long"},
		{"bad characters", registration("al ice", "alice@example.com", "secret", "secret"), "Username must contain only letters numbers or underscore"},
		{"short email", registration("alice", "a@b.c", "secret", "secret"), "Email address must be at least 6 characters long"},
		{"password mismatch", registration("alice", "alice@example.com", "secret", "secreT"), "Passwords must match"},
		{"missing password", registration("alice", "alice@example.com", "", ""), "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, client := setup(t)

			w := client.PostForm("/registration", tt.form)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)

			_, err := st.GetUserByUsername(context.Background(), "alice")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	st, client := setup(t)
	apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)

	w := client.PostForm("/login", url.Values{"username": {"Alice"}, "password": {"secret"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice", w.Header().Get("Location"))

	page := client.Follow(w)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Welcome back Alice!")
	assert.Contains(t, page.Body.String(), `href="/logout"`)
}

func TestLogin_FailureMessagesMatch(t *testing.T) {
	st, client := setup(t)
	apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)

	wrongPassword := client.PostForm("/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusFound, wrongPassword.Code)
	assert.Equal(t, "/login", wrongPassword.Header().Get("Location"))
	assert.Contains(t, client.Follow(wrongPassword).Body.String(), MsgBadLogin)

	unknownUser := client.PostForm("/login", url.Values{"username": {"mallory"}, "password": {"secret"}})
	assert.Equal(t, http.StatusFound, unknownUser.Code)
	assert.Equal(t, "/login", unknownUser.Header().Get("Location"))
	assert.Contains(t, client.Follow(unknownUser).Body.String(), MsgBadLogin)

	w := client.Get("/profile/alice")
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogin_RejectsMissingCSRFToken(t *testing.T) {
	st, client := setup(t)
	apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)

	w := client.PostFormRaw("/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), common.MsgBadCSRF)

	w = client.Get("/profile/alice")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLoginPage_RendersCSRFField(t *testing.T) {
	_, client := setup(t)

	w := client.Get("/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="_csrf" value="`)
	assert.NotContains(t, w.Body.String(), `name="_csrf" value=""`)
}

func TestLogout(t *testing.T) {
	st, client := setup(t)
	user := apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)
	client.LoginAs(user)

	w := client.Get("/logout")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Contains(t, client.Follow(w).Body.String(), MsgLoggedOut)

	w = client.Get("/profile/alice")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestProfile(t *testing.T) {
	st, client := setup(t)
	ctx := context.Background()
	alice := apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)
	apptest.CreateUser(t, st, "bob", "secret", models.RoleUser)
	require.NoError(t, st.CreateArticle(ctx, &models.Article{ArticleName: "Alice writes", CreatedBy: "alice"}))
	require.NoError(t, st.CreateArticle(ctx, &models.Article{ArticleName: "Bob writes", CreatedBy: "bob"}))
	client.LoginAs(alice)

	w := client.Get("/profile/alice")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice writes")
	assert.NotContains(t, w.Body.String(), "Bob writes")

	w = client.Get("/profile/bob")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice", w.Header().Get("Location"))
}

func TestProfile_DeletedUserSessionCleared(t *testing.T) {
	st, client := setup(t)
	user := apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)
	client.LoginAs(user)

	require.NoError(t, st.DB().Delete(&models.User{}, "id = ?", user.ID).Error)

	w := client.Get("/profile/alice")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestEnsureAdmin_CreatesAccount(t *testing.T) {
	st := apptest.NewStore(t)
	ctx := context.Background()

	user, created, err := EnsureAdmin(ctx, st, "Editor", "Editor@Example.com", "secret")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "editor", user.Username)
	assert.True(t, user.IsAdmin())

	stored, err := st.GetUserByUsername(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.Equal(t, "editor@example.com", stored.Email)
	assert.True(t, checkPasswordHash("secret", stored.PasswordHash))
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	st := apptest.NewStore(t)
	ctx := context.Background()
	existing := apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)

	user, created, err := EnsureAdmin(ctx, st, "alice", "", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, user.ID)

	stored, err := st.GetUserByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())
	assert.True(t, checkPasswordHash("secret", stored.PasswordHash))
}

func TestEnsureAdmin_NewAccountNeedsPassword(t *testing.T) {
	st := apptest.NewStore(t)

	_, _, err := EnsureAdmin(context.Background(), st, "editor", "editor@example.com", "")
	assert.Error(t, err)
}
