// Package supabase implements the gateway against a hosted Supabase project:
// GoTrue for authentication and PostgREST for the record collections. Only
// the narrow request/response surface this app needs is covered.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"caixamei/internal/gateway"
)

type Client struct {
	baseURL string
	anonKey string
	httpc   *http.Client

	mu        sync.Mutex
	sess      *authSession
	listeners map[int]func(bool)
	nextSub   int
}

// Interface conformance.
var _ gateway.Gateway = (*Client)(nil)

type authSession struct {
	accessToken  string
	refreshToken string
	userID       string
	expiresAt    time.Time
}

// New creates a client for the project at baseURL, authenticating requests
// with the anon key until a user signs in.
func New(baseURL, anonKey string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing supabase URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse supabase URL: %w", err)
	}
	if strings.TrimSpace(anonKey) == "" {
		return nil, errors.New("missing supabase anon key")
	}
	return &Client{
		baseURL:   baseURL,
		anonKey:   anonKey,
		httpc:     &http.Client{Timeout: 15 * time.Second},
		listeners: map[int]func(bool){},
	}, nil
}

// --- Auth ---

// CurrentUserID returns the signed-in user, refreshing the access token
// first when it has expired. A failed refresh drops the session.
func (c *Client) CurrentUserID(ctx context.Context) (string, bool) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return "", false
	}
	if time.Until(sess.expiresAt) > 30*time.Second {
		return sess.userID, true
	}
	if err := c.refresh(ctx, sess.refreshToken); err != nil {
		c.setSession(nil)
		return "", false
	}
	c.mu.Lock()
	sess = c.sess
	c.mu.Unlock()
	if sess == nil {
		return "", false
	}
	return sess.userID, true
}

func (c *Client) SignIn(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	err := c.authPost(ctx, "/auth/v1/token?grant_type=password", body, &resp)
	if err != nil {
		return err
	}
	c.setSession(resp.session())
	return nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	var err error
	if sess != nil {
		err = c.authPost(ctx, "/auth/v1/logout", struct{}{}, nil)
	}
	// The local session goes away regardless of what the server said.
	c.setSession(nil)
	return err
}

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	// No session is kept: the account waits for its confirmation mail.
	return c.authPost(ctx, "/auth/v1/signup", body, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.authPost(ctx, "/auth/v1/recover", map[string]string{"email": email}, nil)
}

func (c *Client) OnSessionChange(fn func(loggedIn bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	var resp tokenResponse
	if err := c.authPost(ctx, "/auth/v1/token?grant_type=refresh_token", body, &resp); err != nil {
		return err
	}
	c.setSession(resp.session())
	return nil
}

func (c *Client) setSession(sess *authSession) {
	c.mu.Lock()
	was := c.sess != nil
	c.sess = sess
	is := sess != nil
	fns := make([]func(bool), 0, len(c.listeners))
	// Token refresh keeps the same logical state but still notifies, same
	// as the hosted client's auth state events.
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	if was == is && !is {
		return
	}
	for _, fn := range fns {
		fn(is)
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (r tokenResponse) session() *authSession {
	return &authSession{
		accessToken:  r.AccessToken,
		refreshToken: r.RefreshToken,
		userID:       r.User.ID,
		expiresAt:    time.Now().Add(time.Duration(r.ExpiresIn) * time.Second),
	}
}

type authError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error_code"`
}

// authPost hits a GoTrue endpoint. Credential rejections map onto
// gateway.ErrInvalidCredentials so callers can tell them apart from
// transport failures.
func (c *Client) authPost(ctx context.Context, path string, body any, out any) error {
	status, data, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode auth response: %w", err)
			}
		}
		return nil
	}

	var ae authError
	_ = json.Unmarshal(data, &ae)
	msg := ae.ErrorDescription
	if msg == "" {
		msg = ae.Msg
	}
	if msg == "" {
		msg = ae.Error
	}
	if ae.ErrorCode == "invalid_credentials" || strings.EqualFold(msg, "Invalid login credentials") {
		return fmt.Errorf("%w: %s", gateway.ErrInvalidCredentials, msg)
	}
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	return fmt.Errorf("auth request %s: %s", path, msg)
}

// do sends one request with the project key and, when present, the user's
// bearer token.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil {
		return c.sess.accessToken
	}
	return c.anonKey
}

// restError turns a non-2xx PostgREST response into an error with enough
// context to debug without dumping whole bodies into logs.
func restError(op, table string, status int, data []byte) error {
	snippet := strings.TrimSpace(string(data))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return fmt.Errorf("%s %s: status %d: %s", op, table, status, snippet)
}
