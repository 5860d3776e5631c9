package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"instadm/internal/entities"
	"instadm/internal/infrastructure"
	"instadm/internal/interfaces"
	"instadm/internal/repository/memory"
	"instadm/internal/usecases"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []interfaces.Notification
}

func (d *recordingDispatcher) Dispatch(n interfaces.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
}

type testServer struct {
	t          *testing.T
	engine     *gin.Engine
	stores     interfaces.Stores
	auth       *usecases.AuthUsecase
	dispatcher *recordingDispatcher
	metrics    *Metrics
}

type serverOption func(*Dependencies)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	stores := memory.New().Stores()
	d := &recordingDispatcher{}
	auth := usecases.NewAuthUsecase(stores.Companies, d, "test-secret", 7*24*time.Hour)
	metrics := NewMetrics()

	deps := Dependencies{
		Auth:           auth,
		Analytics:      usecases.NewAnalyticsUsecase(stores.ChatHistory),
		Appointments:   usecases.NewAppointmentUsecase(stores.Appointments, stores.Companies, d),
		ProductDetails: usecases.NewProductDetailsUsecase(stores.ProductDetails, stores.Companies),
		Companies:      usecases.NewCompanyUsecase(stores.Companies, d),
		ChatHistory:    usecases.NewChatHistoryUsecase(stores.ChatHistory),
		TenantLimiter:  infrastructure.NewKeyedRateLimiter(1000, 1000),
		IPLimiter:      infrastructure.NewKeyedRateLimiter(1000, 1000),
		Logger:         zap.NewNop(),
		Metrics:        metrics,
		CORSOrigin:     "*",
		MaxBodyBytes:   1 << 20,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	r := gin.New()
	SetupRoutes(r, deps)
	return &testServer{t: t, engine: r, stores: stores, auth: auth, dispatcher: d, metrics: metrics}
}

type response struct {
	*httptest.ResponseRecorder
	body map[string]any
}

func (s *testServer) do(method, path, token string, body any) response {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) response {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	res := response{ResponseRecorder: w}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res.body), w.Body.String())
	}
	return res
}

// signup registers a company over HTTP and returns its token and record.
func (s *testServer) signup(name, email string) (string, *entities.Company) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": name, "phone": "+62 812 3456 7890", "email": email, "password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Body.String())
	token := res.body["token"].(string)

	id, err := s.auth.ParseToken(token)
	require.NoError(s.t, err)
	company, err := s.stores.Companies.GetByID(context.Background(), id)
	require.NoError(s.t, err)
	return token, company
}

func (s *testServer) message(c *entities.Company, sender, recipient, id string, at time.Time) {
	s.t.Helper()
	require.NoError(s.t, s.stores.ChatHistory.Insert(context.Background(), &entities.ChatHistory{
		SenderID: sender, RecipientID: recipient, CompanyID: c.ID, CompanyInstagramID: c.InstagramID,
		Message: "msg " + id, MessageID: id, CreatedAt: at,
	}))
}

// failingChatHistory simulates a lost database connection.
type failingChatHistory struct {
	interfaces.ChatHistoryStore
}

var errConnReset = errors.New("connection reset by peer")

func (failingChatHistory) CountByCompany(context.Context, string) (int64, error) {
	return 0, errConnReset
}

func (failingChatHistory) CountCounterparts(context.Context, string) (int64, error) {
	return 0, errConnReset
}

func (failingChatHistory) Recent(context.Context, string, int) ([]entities.ChatHistory, error) {
	return nil, errConnReset
}

func (failingChatHistory) Breakdown(context.Context, string, string) (entities.MessageBreakdown, error) {
	return entities.MessageBreakdown{}, errConnReset
}

func newRequest(t *testing.T, method, path string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
