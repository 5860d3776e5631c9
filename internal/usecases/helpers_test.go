package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
	"instadm/internal/repository/memory"
)

const testSecret = "test-secret"

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []interfaces.Notification
}

func (d *recordingDispatcher) Dispatch(n interfaces.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
}

func (d *recordingDispatcher) subjects() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.sent))
	for _, n := range d.sent {
		out = append(out, n.Subject)
	}
	return out
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, interfaces.Notification) error {
	return errors.New("smtp: connection refused")
}

type fixture struct {
	stores     interfaces.Stores
	dispatcher *recordingDispatcher
	auth       *AuthUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := memory.New().Stores()
	d := &recordingDispatcher{}
	return &fixture{
		stores:     stores,
		dispatcher: d,
		auth:       NewAuthUsecase(stores.Companies, d, testSecret, 7*24*time.Hour),
	}
}

// signup registers a company and returns it with its password hash.
func (f *fixture) signup(t *testing.T, name, email string) *entities.Company {
	t.Helper()
	_, c, err := f.auth.Signup(context.Background(), SignupInput{
		Name: name, Phone: "+62 812 3456 7890", Email: email, Password: "secret123",
	})
	require.NoError(t, err)
	stored, err := f.stores.Companies.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	return stored
}

func (f *fixture) message(t *testing.T, c *entities.Company, sender, recipient, id string, at time.Time) {
	t.Helper()
	require.NoError(t, f.stores.ChatHistory.Insert(context.Background(), &entities.ChatHistory{
		SenderID:           sender,
		RecipientID:        recipient,
		CompanyID:          c.ID,
		CompanyInstagramID: c.InstagramID,
		Message:            "msg " + id,
		MessageID:          id,
		CreatedAt:          at,
	}))
}
