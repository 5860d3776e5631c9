package dashclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"instadm/internal/interfaces"
	httpapi "instadm/internal/interfaces/http"
	"instadm/internal/repository/memory"
	"instadm/internal/usecases"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(interfaces.Notification) {}

func newAPI(t *testing.T) (*httptest.Server, interfaces.Stores) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	stores := memory.New().Stores()
	d := nopDispatcher{}

	r := gin.New()
	httpapi.SetupRoutes(r, httpapi.Dependencies{
		Auth:           usecases.NewAuthUsecase(stores.Companies, d, "test-secret", time.Hour),
		Analytics:      usecases.NewAnalyticsUsecase(stores.ChatHistory),
		Appointments:   usecases.NewAppointmentUsecase(stores.Appointments, stores.Companies, d),
		ProductDetails: usecases.NewProductDetailsUsecase(stores.ProductDetails, stores.Companies),
		Companies:      usecases.NewCompanyUsecase(stores.Companies, d),
		ChatHistory:    usecases.NewChatHistoryUsecase(stores.ChatHistory),
		Logger:         zap.NewNop(),
		CORSOrigin:     "*",
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, stores
}

func signupInput(email string) usecases.SignupInput {
	return usecases.SignupInput{Name: "Acme", Phone: "+62 812 3456 7890", Email: email, Password: "secret123"}
}

func TestClient_RequiresHydration(t *testing.T) {
	srv, _ := newAPI(t)
	c := New(srv.URL, NewSession())

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotHydrated)

	require.NoError(t, c.Session().Hydrate())
	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestClient_SignupLoginAndAnalytics(t *testing.T) {
	srv, _ := newAPI(t)
	ctx := context.Background()
	s := NewSession()
	require.NoError(t, s.Hydrate())
	c := New(srv.URL, s)

	require.NoError(t, c.Signup(ctx, signupInput("owner@acme.test")))
	require.NotEmpty(t, s.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner@acme.test", me.Email)
	assert.Empty(t, me.PasswordHash)

	require.NoError(t, c.Logout())
	require.NoError(t, c.Login(ctx, "owner@acme.test", "secret123"))

	a, err := c.Analytics(ctx)
	require.NoError(t, err)
	assert.Zero(t, a.TotalMessages)
	assert.Equal(t, "0.0", a.AvgMessagesPerUser)
	assert.Empty(t, a.RecentActivity)
}

func TestClient_BadLoginKeepsSessionAndReturnsAPIError(t *testing.T) {
	srv, _ := newAPI(t)
	s := NewSession()
	require.NoError(t, s.Hydrate())
	c := New(srv.URL, s)

	err := c.Login(context.Background(), "nobody@acme.test", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestClient_DeletedCompanyClearsSession(t *testing.T) {
	srv, stores := newAPI(t)
	ctx := context.Background()
	s := NewSession()
	require.NoError(t, s.Hydrate())
	c := New(srv.URL, s)
	require.NoError(t, c.Signup(ctx, signupInput("owner@acme.test")))

	company, err := stores.Companies.GetByEmail(ctx, "owner@acme.test")
	require.NoError(t, err)
	require.NoError(t, stores.Companies.Delete(ctx, company))

	_, err = c.Me(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.SessionExpired())
	assert.Empty(t, s.Token())
}

func TestClient_UnknownAppointmentKeepsSession(t *testing.T) {
	srv, _ := newAPI(t)
	ctx := context.Background()
	s := NewSession()
	require.NoError(t, s.Hydrate())
	c := New(srv.URL, s)
	require.NoError(t, c.Signup(ctx, signupInput("owner@acme.test")))

	status := "confirmed"
	_, err := c.UpdateAppointment(ctx, usecases.UpdateAppointmentInput{ID: "missing", Status: &status})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.False(t, apiErr.SessionExpired())
	assert.NotEmpty(t, s.Token())
}

func TestClient_UpdateCompany(t *testing.T) {
	srv, _ := newAPI(t)
	ctx := context.Background()
	s := NewSession()
	require.NoError(t, s.Hydrate())
	c := New(srv.URL, s)
	require.NoError(t, c.Signup(ctx, signupInput("owner@acme.test")))

	company, err := c.UpdateCompany(ctx, map[string]any{"bot_role": "Concierge"})
	require.NoError(t, err)
	assert.Equal(t, "Concierge", company.BotRole)

	_, err = c.UpdateCompany(ctx, map[string]any{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	appts, err := c.Appointments(ctx)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestFileSession_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := NewFileSession(path)
	require.NoError(t, s.Hydrate())
	assert.Empty(t, s.Token())
	require.NoError(t, s.SetToken("tok-1"))

	reloaded := NewFileSession(path)
	assert.False(t, reloaded.Hydrated())
	require.NoError(t, reloaded.Hydrate())
	assert.True(t, reloaded.Hydrated())
	assert.Equal(t, "tok-1", reloaded.Token())

	require.NoError(t, reloaded.Clear())
	again := NewFileSession(path)
	require.NoError(t, again.Hydrate())
	assert.Empty(t, again.Token())
}

