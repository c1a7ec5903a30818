package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/auth"
	jsvc "github.com/amoylab/catalog/internal/auth/jwt"
	"github.com/amoylab/catalog/internal/auth/storage"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers map[uint]*database.User

func (f fakeUsers) LoadUser(_ context.Context, id uint) (*database.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, cnst.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, cnst.ErrUserDisabled
	}
	return u, nil
}

var testTokens = func() *auth.Tokens {
	s, _ := jsvc.NewService(jsvc.Config{SecretKey: "this-is-a-very-long-secret-key-for-testing", Duration: time.Hour})
	return auth.NewTokens(zap.NewNop(), s, storage.NewMemoryStorage(), time.Hour)
}()

func newRouter(users UserLoader, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(errorx.NewErrorHandler(zap.NewNop()).ErrorMiddleware(), Lang(), Authenticate(testTokens, users))
	handlers := append(extra, func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"actor": actor.String(), "lang": c.GetString(cnst.XLang)})
	})
	r.GET("/p", handlers...)
	return r
}

func do(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, userID uint) string {
	t.Helper()
	pair, err := testTokens.Issue(context.Background(), auth.Subject{UserID: userID, Username: "u"})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	w := do(newRouter(fakeUsers{}), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actor":"anonymous"`)
}

func TestAuthenticate_ResolvesActor(t *testing.T) {
	business := uint(4)
	users := fakeUsers{7: {ID: 7, Username: "u", BusinessID: &business, IsActive: true, Role: &database.Role{Name: "editor"}}}
	w := do(newRouter(users), map[string]string{"Authorization": "Bearer " + token(t, 7)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actor":"user:7"`)
}

func TestAuthenticate_Rejections(t *testing.T) {
	users := fakeUsers{8: {ID: 8, Username: "off", IsActive: false}}
	cases := map[string]string{
		"bad prefix":    "Token abc",
		"invalid token": "Bearer invalid",
		"unknown user":  "Bearer " + token(t, 99),
		"disabled user": "Bearer " + token(t, 8),
	}
	for name, header := range cases {
		w := do(newRouter(users), map[string]string{"Authorization": header})
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Contains(t, w.Body.String(), `"error"`, name)
	}
}

func TestRequireActor(t *testing.T) {
	w := do(newRouter(fakeUsers{}, RequireActor()), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "E2001")
}

func TestLang(t *testing.T) {
	w := do(newRouter(fakeUsers{}), map[string]string{"Accept-Language": "zh-CN,zh;q=0.9"})
	assert.Contains(t, w.Body.String(), `"lang":"zh"`)

	w = do(newRouter(fakeUsers{}), map[string]string{cnst.XLang: "fr"})
	assert.Contains(t, w.Body.String(), `"lang":"en"`)
}
