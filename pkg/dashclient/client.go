// Package dashclient is a typed client for the dashboard API.
package dashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"instadm/internal/entities"
	"instadm/internal/usecases"
)

var (
	ErrNotHydrated = errors.New("dashclient: session not hydrated")
	ErrNoToken     = errors.New("dashclient: not logged in")
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int                   `json:"-"`
	Message string                `json:"error"`
	Details []entities.FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashclient: %d %s", e.Status, e.Message)
}

// SessionExpired reports whether the server rejected the session: the token
// is invalid or its company no longer exists. The client has already cleared
// the token when this is true.
func (e *APIError) SessionExpired() bool {
	return e.Status == http.StatusUnauthorized ||
		(e.Status == http.StatusNotFound && e.Message == companyNotFound)
}

const companyNotFound = "Company not found"

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth", false, body, &out); err != nil {
		return err
	}
	return c.session.SetToken(out.Token)
}

// Signup creates a company and logs in as it.
func (c *Client) Signup(ctx context.Context, in usecases.SignupInput) error {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", false, in, &out); err != nil {
		return err
	}
	return c.session.SetToken(out.Token)
}

func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me returns the company the session belongs to.
func (c *Client) Me(ctx context.Context) (*entities.Company, error) {
	var out struct {
		Company *entities.Company `json:"company"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Company, nil
}

func (c *Client) Analytics(ctx context.Context) (*usecases.Analytics, error) {
	var out struct {
		Analytics *usecases.Analytics `json:"analytics"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Analytics, nil
}

func (c *Client) Appointments(ctx context.Context) ([]entities.Appointment, error) {
	var out struct {
		Appointments []entities.Appointment `json:"appointments"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/appointments", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, in usecases.UpdateAppointmentInput) (*entities.Appointment, error) {
	var out struct {
		Appointment *entities.Appointment `json:"appointment"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/appointments", true, in, &out); err != nil {
		return nil, err
	}
	return out.Appointment, nil
}

// UpdateCompany sends the given fields (e.g. "bot_role") to PUT /api/company.
func (c *Client) UpdateCompany(ctx context.Context, fields map[string]any) (*entities.Company, error) {
	var out struct {
		Company *entities.Company `json:"company"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/company", true, fields, &out); err != nil {
		return nil, err
	}
	return out.Company, nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	if !c.session.Hydrated() {
		return ErrNotHydrated
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		token := c.session.Token()
		if token == "" {
			return ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		if authed && apiErr.SessionExpired() {
			if err := c.session.Clear(); err != nil {
				return errors.Join(apiErr, err)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
