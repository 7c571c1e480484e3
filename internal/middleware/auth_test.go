package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/internal/service"
	"github.com/squid-app/squid-api/pkg/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGoogle struct{}

func (stubGoogle) TokenInfo(ctx context.Context, queryKey, token string) (*google.TokenInfo, error) {
	return &google.TokenInfo{Sub: "1234", Aud: "clientId1", Name: "Jane", Picture: "jane.png"}, nil
}

func (stubGoogle) UserInfo(ctx context.Context, accessToken string) (*google.UserInfo, error) {
	return &google.UserInfo{Sub: "1234", Name: "Jane", Picture: "jane.png"}, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authService := service.NewAuthService(stubGoogle{}, []string{"clientId1"}, nil)
	r.GET("/me", AuthMiddleware(authService), func(c *gin.Context) {
		c.JSON(http.StatusOK, GetIdentity(c))
	})
	return r
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer Google OAuth ID Token=abc")
	w := httptest.NewRecorder()

	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var identity model.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
	assert.Equal(t, "google-1234", identity.ID)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	w := httptest.NewRecorder()

	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.ErrorResponse{
		Code:       model.ErrorCodeAuthorization,
		CodeString: "Authorization",
		Message:    "Authorization header must be sent with Google token",
	}, body)
}
