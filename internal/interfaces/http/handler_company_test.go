package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instadm/internal/entities"
)

func TestCompany_PublicProfile(t *testing.T) {
	s := newTestServer(t)
	_, c := s.signup("Acme", "owner@acme.test")

	res := s.do(http.MethodGet, "/api/company?instagram_id="+c.InstagramID, "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	profile := res.body["company"].(map[string]any)
	assert.Equal(t, "Acme", profile["name"])
	assert.NotContains(t, profile, "email")
	assert.NotContains(t, profile, "password")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/company", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/company?instagram_id=1", "", nil).Code)
}

func TestCompany_ProfileResolvesOneTenant(t *testing.T) {
	s := newTestServer(t)
	s.signup("Acme", "owner@acme.test")
	_, other := s.signup("Globex", "owner@globex.test")

	res := s.do(http.MethodGet, "/api/company?instagram_id="+other.InstagramID, "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	profile, ok := res.body["company"].(map[string]any)
	require.True(t, ok, "company is a single object, got %T", res.body["company"])
	assert.Equal(t, "Globex", profile["name"])
	assert.Equal(t, other.InstagramID, profile["instagram_id"])
}

func TestCompany_Register(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{
		"name": "Acme", "phone": "+62 812 3456 7890", "email": "owner@acme.test", "password": "secret123",
		"instagram_id": "17841400000000001", "faqs": []gin.H{{"question": "Open?", "answer": "9-5"}},
	}

	res := s.do(http.MethodPost, "/api/company", "", body)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	company := res.body["company"].(map[string]any)
	assert.Equal(t, "17841400000000001", company["instagram_id"])
	assert.NotContains(t, res.Body.String(), "secret123")

	body["email"] = "other@acme.test"
	res = s.do(http.MethodPost, "/api/company", "", body)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestCompany_UpdateOnlyAllowListedFields(t *testing.T) {
	s := newTestServer(t)
	token, c := s.signup("Acme", "owner@acme.test")

	res := s.do(http.MethodPut, "/api/company", token, gin.H{
		"bot_role":     "Sales assistant",
		"is_active":    false,
		"keywords":     []string{"promo"},
		"email":        "hijack@evil.test",
		"instagram_id": "1",
		"password":     "pwned",
	})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	stored, err := s.stores.Companies.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sales assistant", stored.BotRole)
	assert.False(t, stored.IsActive)
	assert.Equal(t, []string{"promo"}, stored.Keywords)
	assert.Equal(t, c.Email, stored.Email)
	assert.Equal(t, c.InstagramID, stored.InstagramID)
	assert.Equal(t, c.PasswordHash, stored.PasswordHash)

	res = s.do(http.MethodPut, "/api/company", token, gin.H{"email": "only@ignored.test"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = s.do(http.MethodPut, "/api/company", "", gin.H{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCompany_DeleteCascades(t *testing.T) {
	s := newTestServer(t)
	token, c := s.signup("Acme", "owner@acme.test")
	s.message(c, "cust", c.InstagramID, "m1", time.Now())

	res := s.do(http.MethodDelete, "/api/company", token, nil)
	require.Equal(t, http.StatusOK, res.Code)

	n, err := s.stores.ChatHistory.CountByCompany(context.Background(), c.InstagramID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the token outlives the company
	res = s.do(http.MethodGet, "/api/auth", token, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	_, err = s.stores.Companies.GetByID(context.Background(), c.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestCompany_QRCode(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup("Acme", "owner@acme.test")

	res := s.do(http.MethodGet, "/api/company/qrcode?size=300", token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "image/png", res.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), res.Body.Bytes()[:4])

	res = s.do(http.MethodGet, "/api/company/qrcode?size=5000", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
