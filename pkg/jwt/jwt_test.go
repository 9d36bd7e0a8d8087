package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"study-assistant/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "test", ExpireTime: time.Hour})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newService()

	tok, err := s.GenerateToken("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ClientID)

	claims, err := s.ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, tok.ClientID, claims.ID)

	other, err := s.GenerateToken("alice")
	require.NoError(t, err)
	assert.NotEqual(t, tok.ClientID, other.ClientID)
}

func TestGenerateToken_EmptyUsername(t *testing.T) {
	_, err := newService().GenerateToken("")
	assert.Error(t, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	s := newService()
	tok, err := s.GenerateToken("alice")
	require.NoError(t, err)

	_, err = NewJWTService(config.JWTConfig{Secret: "other", Issuer: "test", ExpireTime: time.Hour}).ValidateToken(tok.AccessToken)
	assert.Error(t, err)

	_, err = NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "someone-else", ExpireTime: time.Hour}).ValidateToken(tok.AccessToken)
	assert.Error(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.ValidateToken(tok.AccessToken)
	assert.Error(t, err)

	_, err = s.ValidateToken("")
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService()
	tok, err := s.GenerateToken("alice")
	require.NoError(t, err)

	revoked := map[string]bool{}
	r := gin.New()
	r.GET("/me", s.AuthMiddleware(func(clientID, username string) bool {
		return !revoked[clientID]
	}), func(c *gin.Context) {
		c.String(http.StatusOK, GetUsername(c)+"/"+GetClientID(c))
	})

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("Bearer " + tok.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice/"+tok.ClientID, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage").Code)

	revoked[tok.ClientID] = true
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+tok.AccessToken).Code)
}
