// Package api is the HTTP client for the representation-request service.
//
// Every operation maps failures into three buckets the UI can act on:
// ErrUnauthorized (401: clear the session and return to login), *ServerError
// (non-2xx with the backend's message when it sent one), and plain transport
// errors (connectivity).
package api

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

	"repdesk/internal/model"
)

// ErrUnauthorized is returned for any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidCredentials is returned by Login for a 401 specifically, so the
// UI can distinguish bad credentials from transient failures.
var ErrInvalidCredentials = errors.New("invalid phone or password")

// ServerError is a non-401 non-2xx response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (status %d)", e.Status)
}

// Client talks to the backend. Token may be empty (login only).
type Client struct {
	BaseURL string
	Token   string

	// HTTPClient defaults to a client with a request timeout.
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

// LoginResult is the auth endpoint's success payload.
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login exchanges credentials for a token+role.
func (c *Client) Login(ctx context.Context, phone, password string) (LoginResult, error) {
	body, err := json.Marshal(map[string]string{"phone": phone, "password": password})
	if err != nil {
		return LoginResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/login"), bytes.NewReader(body))
	if err != nil {
		return LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return LoginResult{}, ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return LoginResult{}, serverError(resp)
	}

	var out LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return LoginResult{}, fmt.Errorf("login: decode response: %w", err)
	}
	return out, nil
}

// ListForms fetches the full record set. Records are returned normalized.
func (c *Client) ListForms(ctx context.Context) ([]model.RequestForm, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/forms"), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forms: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var forms []model.RequestForm
	if err := json.NewDecoder(resp.Body).Decode(&forms); err != nil {
		return nil, fmt.Errorf("fetch forms: decode response: %w", err)
	}
	for i := range forms {
		forms[i].Normalize()
	}
	return forms, nil
}

// CreateForm submits a new request as multipart form data.
func (c *Client) CreateForm(ctx context.Context, d model.Draft) (model.RequestForm, error) {
	return c.sendForm(ctx, http.MethodPost, c.url("/api/forms"), d, false)
}

// UpdateForm resubmits an existing request. The backend treats every edit as
// unconfirmed again, so isConfirmed is forced back to false.
func (c *Client) UpdateForm(ctx context.Context, id model.FormID, d model.Draft) (model.RequestForm, error) {
	return c.sendForm(ctx, http.MethodPut, c.url("/api/forms/"+id.String()), d, true)
}

// ConfirmForm marks a request confirmed (JSON PUT, no other fields).
func (c *Client) ConfirmForm(ctx context.Context, id model.FormID) (model.RequestForm, error) {
	body := strings.NewReader(`{"isConfirmed":true}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url("/api/forms/"+id.String()), body)
	if err != nil {
		return model.RequestForm{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return model.RequestForm{}, fmt.Errorf("confirm form: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return model.RequestForm{}, err
	}
	return decodeForm(resp.Body)
}

// DeleteForm removes a request.
func (c *Client) DeleteForm(ctx context.Context, id model.FormID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url("/api/forms/"+id.String()), nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return checkStatus(resp)
}

func (c *Client) authorize(req *http.Request) {
	if strings.TrimSpace(c.Token) != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp)
	}
	return nil
}

// serverError extracts the backend's message when the body carries one.
func serverError(resp *http.Response) error {
	se := &ServerError{Status: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(b) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(b, &payload) == nil {
			se.Message = strings.TrimSpace(payload.Message)
		}
	}
	return se
}

func decodeForm(r io.Reader) (model.RequestForm, error) {
	var f model.RequestForm
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return model.RequestForm{}, fmt.Errorf("decode record: %w", err)
	}
	f.Normalize()
	return f, nil
}
