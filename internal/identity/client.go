package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/config"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/google/uuid"
	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

// Config holds identity provider connection settings
type Config struct {
	BaseURL        string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

// ConfigFrom maps application settings onto a client configuration
func ConfigFrom(sc config.SupabaseConfig) *Config {
	return &Config{
		BaseURL:        sc.URL,
		AnonKey:        sc.AnonKey,
		ServiceRoleKey: sc.ServiceRoleKey,
		Timeout:        sc.Timeout,
	}
}

// User is an identity provider account
type User struct {
	ID               string
	Email            string
	EmailConfirmedAt *time.Time
	UserMetadata     map[string]interface{}
}

// MetadataString reads a string from user_metadata
func (u *User) MetadataString(key string) string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	s, _ := u.UserMetadata[key].(string)
	return s
}

// Session is an issued token pair
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	User         *User
}

// AuthResult is the outcome of a sign-up or token grant. Session is nil when email confirmation is pending.
type AuthResult struct {
	User    *User
	Session *Session
}

// Client wraps the GoTrue SDK. SDK calls take no context, so every call gets an
// HTTP client bound to the caller's context.
type Client struct {
	config    *Config
	auth      gotrue.Client
	transport http.RoundTripper
	timeout   time.Duration
}

// NewClient creates a new identity client
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:    cfg,
		auth:      gotrue.New("", cfg.AnonKey).WithCustomGoTrueURL(authURL(cfg.BaseURL)),
		transport: otelhttp.NewTransport(http.DefaultTransport),
		timeout:   timeout,
	}
}

func authURL(base string) string {
	return strings.TrimRight(base, "/") + "/auth/v1"
}

// sdk returns a client authorized with bearer whose requests carry ctx and any extra query values
func (c *Client) sdk(ctx context.Context, bearer string, query url.Values, rewrite func(map[string]interface{})) gotrue.Client {
	rt := &boundTransport{ctx: ctx, base: c.transport, query: query, rewrite: rewrite}
	return c.auth.WithClient(http.Client{Timeout: c.timeout, Transport: rt}).WithToken(bearer)
}

// SignUp registers a new account with full_name in user_metadata
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.sign_up")
	defer span.End()

	resp, err := c.sdk(ctx, "", nil, nil).Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     map[string]interface{}{"full_name": fullName},
	})
	if err != nil {
		err = classify(opSignUp, err)
		telemetry.FailSpan(span, err, "sign up failed")
		return nil, err
	}

	if resp.Session.AccessToken != "" {
		span.SetStatus(codes.Ok, "")
		return sessionResult(&resp.Session), nil
	}
	if resp.User.ID == uuid.Nil {
		err = domain.Upstream("Identity Provider Returned an Empty Response", nil)
		telemetry.FailSpan(span, err, "empty sign up response")
		return nil, err
	}
	span.SetStatus(codes.Ok, "confirmation pending")
	return &AuthResult{User: fromSDKUser(&resp.User)}, nil
}

// SignInWithPassword runs the password grant
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.sign_in")
	defer span.End()

	resp, err := c.sdk(ctx, "", nil, nil).SignInWithEmailPassword(email, password)
	if err != nil {
		err = classify(opSignIn, err)
		telemetry.FailSpan(span, err, "sign in failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return sessionResult(&resp.Session), nil
}

// RefreshSession runs the refresh_token grant
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.refresh")
	defer span.End()

	resp, err := c.sdk(ctx, "", nil, nil).RefreshToken(refreshToken)
	if err != nil {
		err = classify(opRefresh, err)
		telemetry.FailSpan(span, err, "refresh failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return sessionResult(&resp.Session), nil
}

// ExchangeCode trades an OAuth or recovery auth code for a session
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.exchange_code")
	defer span.End()

	// The pkce grant reads the code from auth_code
	resp, err := c.sdk(ctx, "", nil, renameField("code", "auth_code")).Token(types.TokenRequest{
		GrantType:    "pkce",
		Code:         code,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		err = classify(opExchange, err)
		telemetry.FailSpan(span, err, "code exchange failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return sessionResult(&resp.Session), nil
}

// AuthorizeURL builds the provider consent redirect. It is built locally because the
// redirect carries redirect_to and provider-specific parameters.
func (c *Client) AuthorizeURL(provider, redirectTo string, extra map[string]string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	for k, v := range extra {
		q.Set(k, v)
	}
	return authURL(c.config.BaseURL) + "/authorize?" + q.Encode()
}

// SignOut revokes the session belonging to accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := telemetry.StartSpan(ctx, "identity.sign_out")
	defer span.End()

	if err := c.sdk(ctx, accessToken, nil, nil).Logout(); err != nil {
		err = classify(opSignOut, err)
		telemetry.FailSpan(span, err, "sign out failed")
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// RecoverPassword sends a reset email
func (c *Client) RecoverPassword(ctx context.Context, email, redirectTo string) error {
	ctx, span := telemetry.StartSpan(ctx, "identity.recover")
	defer span.End()

	var query url.Values
	if redirectTo != "" {
		query = url.Values{"redirect_to": {redirectTo}}
	}
	if err := c.sdk(ctx, "", query, nil).Recover(types.RecoverRequest{Email: email}); err != nil {
		err = classify(opRecover, err)
		telemetry.FailSpan(span, err, "recover failed")
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// AdminUpdatePassword sets a user's password with the service role key
func (c *Client) AdminUpdatePassword(ctx context.Context, userID, password string) error {
	ctx, span := telemetry.StartSpan(ctx, "identity.admin_update_password")
	defer span.End()

	id, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	_, err = c.sdk(ctx, c.config.ServiceRoleKey, nil, nil).AdminUpdateUser(types.AdminUpdateUserRequest{
		UserID:   id,
		Password: password,
	})
	if err != nil {
		err = classify(opAdmin, err)
		telemetry.FailSpan(span, err, "admin update failed")
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetUser resolves an access token to its account
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.get_user")
	defer span.End()

	resp, err := c.sdk(ctx, accessToken, nil, nil).GetUser()
	if err != nil {
		err = classify(opGetUser, err)
		telemetry.FailSpan(span, err, "get user failed")
		return nil, err
	}
	if resp.ID == uuid.Nil {
		return nil, domain.ErrInvalidToken
	}
	span.SetStatus(codes.Ok, "")
	return fromSDKUser(&resp.User), nil
}

func sessionResult(s *types.Session) *AuthResult {
	user := fromSDKUser(&s.User)
	return &AuthResult{
		User: user,
		Session: &Session{
			AccessToken:  s.AccessToken,
			RefreshToken: s.RefreshToken,
			TokenType:    s.TokenType,
			ExpiresIn:    s.ExpiresIn,
			User:         user,
		},
	}
}

func fromSDKUser(u *types.User) *User {
	if u == nil || u.ID == uuid.Nil {
		return nil
	}
	return &User{
		ID:               u.ID.String(),
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
		UserMetadata:     u.UserMetadata,
	}
}

// boundTransport attaches ctx to every request and optionally adjusts its query or JSON body
type boundTransport struct {
	ctx     context.Context
	base    http.RoundTripper
	query   url.Values
	rewrite func(map[string]interface{})
}

func (t *boundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(t.ctx)

	if len(t.query) > 0 {
		q := out.URL.Query()
		for k, vs := range t.query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		out.URL.RawQuery = q.Encode()
	}

	if t.rewrite != nil && out.Body != nil {
		raw, err := io.ReadAll(out.Body)
		_ = out.Body.Close()
		if err != nil {
			return nil, err
		}
		var body map[string]interface{}
		if json.Unmarshal(raw, &body) == nil {
			t.rewrite(body)
			if rewritten, err := json.Marshal(body); err == nil {
				raw = rewritten
			}
		}
		out.Body = io.NopCloser(bytes.NewReader(raw))
		out.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(raw)), nil }
		out.ContentLength = int64(len(raw))
	}

	return t.base.RoundTrip(out)
}

func renameField(from, to string) func(map[string]interface{}) {
	return func(body map[string]interface{}) {
		if v, ok := body[from]; ok {
			delete(body, from)
			body[to] = v
		}
	}
}
