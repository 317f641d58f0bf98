package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotSignedIn       = errors.New("not signed in")
	ErrAuthRejected      = errors.New("authentication rejected")
	ErrEmailConfirmation = errors.New("account created, confirm the e-mail address before signing in")
)

// Identity is the signed-in user as reported by the auth provider.
type Identity struct {
	ID    string
	Email string
}

// SessionProvider is the boundary to the external auth service. The dashboard only needs to
// know whether a user is present, be told when that changes and be able to sign out.
type SessionProvider interface {
	CurrentUser() *Identity
	SignOut(ctx context.Context) error
	Subscribe(fn func(user *Identity)) (unsubscribe func())
}

// authListeners fans auth state changes out to subscribers.
type authListeners struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(*Identity)
}

func (al *authListeners) subscribe(fn func(*Identity)) func() {
	al.mu.Lock()
	defer al.mu.Unlock()

	if al.fns == nil {
		al.fns = make(map[int]func(*Identity))
	}
	id := al.nextID
	al.nextID++
	al.fns[id] = fn

	return func() {
		al.mu.Lock()
		defer al.mu.Unlock()
		delete(al.fns, id)
	}
}

func (al *authListeners) emit(user *Identity) {
	al.mu.Lock()
	fns := make([]func(*Identity), 0, len(al.fns))
	for _, fn := range al.fns {
		fns = append(fns, fn)
	}
	al.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// Authenticator is a SessionProvider that can also establish a session from credentials.
type Authenticator interface {
	SessionProvider
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
}

// LocalSession is used when no auth service is configured. Any e-mail address is accepted as
// a local identity and no password is checked.
type LocalSession struct {
	mu        sync.Mutex
	user      *Identity
	listeners authListeners
}

// NewLocalSession signs in name as a local user.
func NewLocalSession(name string) *LocalSession {
	if name == "" {
		name = "local"
	}

	return &LocalSession{user: &Identity{ID: "local", Email: name}}
}

func (ls *LocalSession) CurrentUser() *Identity {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	return ls.user
}

// SignIn switches to a local identity named email.
func (ls *LocalSession) SignIn(_ context.Context, email, _ string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("signIn: %w: e-mail address is empty", ErrAuthRejected)
	}

	user := &Identity{ID: "local", Email: email}
	ls.mu.Lock()
	ls.user = user
	ls.mu.Unlock()

	ls.listeners.emit(user)
	return user, nil
}

// SignUp behaves like SignIn, there is nothing to register locally.
func (ls *LocalSession) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	return ls.SignIn(ctx, email, password)
}

func (ls *LocalSession) SignOut(_ context.Context) error {
	ls.mu.Lock()
	wasSignedIn := ls.user != nil
	ls.user = nil
	ls.mu.Unlock()

	if !wasSignedIn {
		return ErrNotSignedIn
	}

	ls.listeners.emit(nil)
	return nil
}

func (ls *LocalSession) Subscribe(fn func(*Identity)) func() {
	return ls.listeners.subscribe(fn)
}

// AuthOptions configures the GoTrue client.
type AuthOptions struct {
	URL     string // project URL, e.g. https://<project>.supabase.co
	APIKey  string // anon key sent as the apikey header
	Timeout time.Duration
}

// GoTrueAuth talks to a Supabase-compatible GoTrue REST API.
type GoTrueAuth struct {
	opts       AuthOptions
	httpClient *http.Client
	logger     *slog.Logger
	listeners  authListeners

	mu          sync.Mutex
	user        *Identity
	accessToken string
	expiresAt   time.Time
}

// NewGoTrueAuth creates a signed-out client.
func NewGoTrueAuth(opts AuthOptions, logger *slog.Logger) *GoTrueAuth {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second //nolint: mnd // sane default
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts.URL = strings.TrimRight(opts.URL, "/")

	return &GoTrueAuth{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userRecord struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// sessionRecord covers both the token response and the bare user returned by sign-up when the
// account still needs confirmation.
type sessionRecord struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	User         userRecord `json:"user"`
	ID           string     `json:"id"`
	Email        string     `json:"email"`
}

type authErrorRecord struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func (rec authErrorRecord) text() string {
	for _, s := range []string{rec.Msg, rec.Message, rec.ErrorDescription, rec.Error} {
		if s != "" {
			return s
		}
	}

	return ""
}

// SignIn authenticates with e-mail and password.
func (ga *GoTrueAuth) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var session sessionRecord
	err := ga.post(ctx, "/auth/v1/token?grant_type=password", "", credentials{email, password}, &session)
	if err != nil {
		return nil, fmt.Errorf("signIn: %w", err)
	}

	if session.AccessToken == "" {
		return nil, fmt.Errorf("signIn: %w: no access token in response", ErrAuthRejected)
	}

	return ga.establish(&session), nil
}

// SignUp registers a new account. If the service signs the user in right away the session is
// established, otherwise ErrEmailConfirmation is returned.
func (ga *GoTrueAuth) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	var session sessionRecord
	if err := ga.post(ctx, "/auth/v1/signup", "", credentials{email, password}, &session); err != nil {
		return nil, fmt.Errorf("signUp: %w", err)
	}

	if session.AccessToken == "" {
		ga.logger.Info("sign-up pending confirmation", "email", email)
		return nil, ErrEmailConfirmation
	}

	return ga.establish(&session), nil
}

// SignOut revokes the session. The local session is cleared even if the request fails.
func (ga *GoTrueAuth) SignOut(ctx context.Context) error {
	ga.mu.Lock()
	token := ga.accessToken
	wasSignedIn := ga.user != nil
	ga.user = nil
	ga.accessToken = ""
	ga.expiresAt = time.Time{}
	ga.mu.Unlock()

	if !wasSignedIn {
		return ErrNotSignedIn
	}

	ga.listeners.emit(nil)

	if err := ga.post(ctx, "/auth/v1/logout", token, nil, nil); err != nil {
		return fmt.Errorf("signOut: %w", err)
	}

	return nil
}

// CurrentUser returns the signed-in user or nil. An expired session counts as signed out.
func (ga *GoTrueAuth) CurrentUser() *Identity {
	ga.mu.Lock()
	defer ga.mu.Unlock()

	if ga.user == nil || (!ga.expiresAt.IsZero() && time.Now().After(ga.expiresAt)) {
		return nil
	}

	return ga.user
}

func (ga *GoTrueAuth) Subscribe(fn func(*Identity)) func() {
	return ga.listeners.subscribe(fn)
}

func (ga *GoTrueAuth) establish(session *sessionRecord) *Identity {
	user := &Identity{ID: session.User.ID, Email: session.User.Email}

	ga.mu.Lock()
	ga.user = user
	ga.accessToken = session.AccessToken
	if session.ExpiresIn > 0 {
		ga.expiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)
	}
	ga.mu.Unlock()

	ga.logger.Info("signed in", "user", user.Email)
	ga.listeners.emit(user)

	return user
}

func (ga *GoTrueAuth) post(ctx context.Context, path, bearer string, payload, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ga.opts.URL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", ga.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := ga.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var rec authErrorRecord
		_ = json.Unmarshal(respBody, &rec)
		if msg := rec.text(); msg != "" {
			return fmt.Errorf("%w: %s", ErrAuthRejected, msg)
		}
		return fmt.Errorf("%w: %s", ErrAuthRejected, resp.Status)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
