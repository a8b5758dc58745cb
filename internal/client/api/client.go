// Package api is the CLI's client for the proposal HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sendgrid/rest"
)

// ErrUnavailable means the server could not be reached at all.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer decoded from the server's error body.
type APIError struct {
	StatusCode int
	Status     string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Status)
}

type sender interface {
	SendWithContext(ctx context.Context, request rest.Request) (*rest.Response, error)
}

type Client struct {
	baseURL string
	rest    sender
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// do sends one request and decodes a 2xx JSON body into out. The status
// code is returned so callers can tell 200 from 201.
func (c *Client) do(ctx context.Context, method rest.Method, path, token string, in, out any) (int, error) {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if token != "" {
		req.Headers["Authorization"] = "Bearer " + token
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	resp, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jerr := json.Unmarshal([]byte(resp.Body), apiErr); jerr != nil || apiErr.Status == "" {
			apiErr.Status = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, apiErr
	}

	if out != nil && resp.Body != "" {
		if err := json.Unmarshal([]byte(resp.Body), out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type RegisterResult struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, email string, password []byte, name string) (*RegisterResult, error) {
	var out RegisterResult
	_, err := c.do(ctx, rest.Post, "/api/auth/register", "", registerRequest{
		Email: email, Password: string(password), Name: name,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Email   string `json:"email"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	var out LoginResult
	_, err := c.do(ctx, rest.Post, "/api/auth/login", "", loginRequest{Email: email, Password: string(password)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type Proposal struct {
	ProposalID    string     `json:"proposalId"`
	Token         string     `json:"token"`
	ShareableLink string     `json:"shareableLink"`
	CreatedAt     time.Time  `json:"createdAt"`
	Response      *string    `json:"response,omitempty"`
	AnsweredAt    *time.Time `json:"answeredAt,omitempty"`
	Message       string     `json:"message,omitempty"`
}

// CreateProposal returns the caller's proposal and whether it was created
// by this call.
func (c *Client) CreateProposal(ctx context.Context, token string) (*Proposal, bool, error) {
	var out Proposal
	code, err := c.do(ctx, rest.Post, "/api/proposal/create", token, nil, &out)
	if err != nil {
		return nil, false, err
	}
	return &out, code == http.StatusCreated, nil
}

func (c *Client) Mine(ctx context.Context, token string) (*Proposal, error) {
	var out Proposal
	if _, err := c.do(ctx, rest.Get, "/api/proposal/mine", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type respondRequest struct {
	Response string `json:"response"`
}

type RespondResult struct {
	Message      string `json:"message"`
	Status       string `json:"status"`
	Response     string `json:"response"`
	Notification string `json:"notification"`
}

// Respond answers the proposal behind shareToken. No session is needed.
func (c *Client) Respond(ctx context.Context, shareToken, answer string) (*RespondResult, error) {
	var out RespondResult
	path := "/api/proposal/" + url.PathEscape(shareToken) + "/respond"
	if _, err := c.do(ctx, rest.Post, path, "", respondRequest{Response: answer}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type Status struct {
	ProposalID   string     `json:"proposalId"`
	Answered     bool       `json:"answered"`
	Response     *string    `json:"response"`
	Notification *string    `json:"notification"`
	AnsweredAt   *time.Time `json:"answeredAt"`
}

func (c *Client) Status(ctx context.Context, token, proposalID string) (*Status, error) {
	var out Status
	path := "/api/proposal/" + url.PathEscape(proposalID) + "/status"
	if _, err := c.do(ctx, rest.Get, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type Notification struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposalId"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (c *Client) Notifications(ctx context.Context, token string) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if _, err := c.do(ctx, rest.Get, "/api/notifications", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// Ping checks that the server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, rest.Get, "/health", "", nil, nil)
	return err
}
