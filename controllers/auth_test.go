package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"carcool-backend/draft"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)

	w := h.send(http.MethodPost, "/auth/login", gin.H{"email": testEmail, "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.send(http.MethodPost, "/auth/login", gin.H{"email": "nobody@carcool.test", "password": testPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginCookieByPlatform(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)

	w := h.send(http.MethodPost, "/auth/login", gin.H{"email": strings.ToUpper(testEmail), "password": testPassword, "platform": "web"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "token=")
	assert.NotContains(t, cookie, "Max-Age")

	w = h.send(http.MethodPost, "/auth/login", gin.H{"email": testEmail, "password": testPassword, "platform": "android"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=3600")
}

func TestMeAndLogout(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)

	w := h.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, testEmail, user["email"])

	w = h.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a fresh login still works
	token := h.login(testPassword)
	w = h.send(http.MethodGet, "/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfileUpdate(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)

	w := h.do(http.MethodPut, "/api/profile", gin.H{"name": "Balwa"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Balwa", decode(t, w)["name"])

	w = h.do(http.MethodPut, "/api/profile", gin.H{"currentPassword": "wrong", "newPassword": "new-garage-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPut, "/api/profile", gin.H{"currentPassword": testPassword, "newPassword": "new-garage-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	h.login("new-garage-pass")
}
