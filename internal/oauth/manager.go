package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quintans/faults"
	"golang.org/x/sync/singleflight"

	"github.com/streamkit/popcorn/internal/app"
)

var (
	ErrUnauthenticated = errors.New("no credential stored")
	// ErrRefresh means the refresh request itself failed. The caller must
	// abort whatever depended on the credential and re-authenticate.
	ErrRefresh = errors.New("refreshing token")
)

type State int

const (
	Unauthenticated State = iota
	Valid
	Expired
	Refreshing
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Refreshing:
		return "refreshing"
	default:
		return "unauthenticated"
	}
}

type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	// BasicAuth sends the client id and secret as an Authorization header
	// instead of body fields.
	BasicAuth bool
	// Identifier keys the credential in the secret store.
	Identifier string
}

// Manager owns the lifetime of one service's OAuth credential: grant
// exchange, keyring persistence, expiry detection and refresh-before-use.
type Manager struct {
	cfg     Config
	secrets app.Secrets
	client  *http.Client

	group singleflight.Group
	mu    sync.RWMutex
	state State
}

func NewManager(cfg Config, secrets app.Secrets) *Manager {
	m := &Manager{
		cfg:     cfg,
		secrets: secrets,
		client:  &http.Client{Timeout: 30 * time.Second},
		state:   Unauthenticated,
	}

	if cred, ok, _ := m.Load(); ok {
		if cred.Expired() {
			m.state = Expired
		} else {
			m.state = Valid
		}
	}

	return m
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// PasswordGrant exchanges a username and password for a credential and
// persists it.
func (m *Manager) PasswordGrant(ctx context.Context, username, password, scope string) (Credential, error) {
	params := url.Values{}
	params.Set("grant_type", "password")
	params.Set("username", username)
	params.Set("password", password)
	if scope != "" {
		params.Set("scope", scope)
	}
	return m.exchange(ctx, params)
}

// AuthorizationCodeGrant exchanges an authorization code for a credential and
// persists it.
func (m *Manager) AuthorizationCodeGrant(ctx context.Context, code, redirectURI string) (Credential, error) {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", redirectURI)
	return m.exchange(ctx, params)
}

// RefreshGrant trades a refresh token for a fresh credential and persists it.
func (m *Manager) RefreshGrant(ctx context.Context, refreshToken string) (Credential, error) {
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", refreshToken)
	return m.exchange(ctx, params)
}

// EnsureValid returns a credential guaranteed valid at return time,
// refreshing first when needed. Concurrent callers that discover expiry at
// the same time share a single in-flight refresh. This blocks its caller and
// must run off the UI context.
func (m *Manager) EnsureValid(ctx context.Context) (Credential, error) {
	cred, ok, err := m.Load()
	if err != nil {
		return Credential{}, err
	}
	if !ok {
		return Credential{}, faults.Wrap(ErrUnauthenticated)
	}
	if !cred.Expired() {
		m.setState(Valid)
		return cred, nil
	}

	v, err, _ := m.group.Do("refresh", func() (any, error) {
		// another caller may have refreshed while we waited
		cred, ok, err := m.Load()
		if err != nil {
			return Credential{}, err
		}
		if !ok {
			return Credential{}, faults.Wrap(ErrUnauthenticated)
		}
		if !cred.Expired() {
			return cred, nil
		}
		if cred.RefreshToken == "" {
			m.setState(Expired)
			return Credential{}, faults.Errorf("%w: no refresh token", ErrRefresh)
		}

		m.setState(Refreshing)
		refreshed, err := m.RefreshGrant(ctx, cred.RefreshToken)
		if err != nil {
			m.setState(Expired)
			return Credential{}, faults.Errorf("%w: %w", ErrRefresh, err)
		}
		m.setState(Valid)
		return refreshed, nil
	})
	if err != nil {
		return Credential{}, err
	}

	return v.(Credential), nil
}

// Load retrieves the persisted credential. ok is false when none is stored.
func (m *Manager) Load() (Credential, bool, error) {
	data, err := m.secrets.Retrieve(m.cfg.Identifier)
	if err != nil {
		return Credential{}, false, faults.Errorf("retrieving credential %s: %w", m.cfg.Identifier, err)
	}
	if data == nil {
		return Credential{}, false, nil
	}

	cred, err := UnmarshalCredential(data)
	if err != nil {
		return Credential{}, false, err
	}
	return cred, true, nil
}

// SignOut deletes the persisted credential. This is the only path that
// removes it; auth failures alone never do.
func (m *Manager) SignOut() error {
	if err := m.secrets.Delete(m.cfg.Identifier); err != nil {
		return faults.Errorf("deleting credential %s: %w", m.cfg.Identifier, err)
	}
	m.setState(Unauthenticated)
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// exchange performs the single token-endpoint POST every grant funnels into.
func (m *Manager) exchange(ctx context.Context, params url.Values) (Credential, error) {
	if !m.cfg.BasicAuth {
		params.Set("client_id", m.cfg.ClientID)
		params.Set("client_secret", m.cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return Credential{}, faults.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if m.cfg.BasicAuth {
		auth := base64.StdEncoding.EncodeToString([]byte(m.cfg.ClientID + ":" + m.cfg.ClientSecret))
		req.Header.Set("Authorization", "Basic "+auth)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return Credential{}, faults.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Credential{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Credential{}, faults.Errorf("decoding token response: %w", err)
	}

	cred := Credential{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}

	// refresh_token is optional in the OAuth2 spec; a refresh response that
	// omits it keeps the token that got us here.
	cred.RefreshToken = tr.RefreshToken
	if cred.RefreshToken == "" {
		cred.RefreshToken = params.Get("refresh_token")
	}

	if tr.ExpiresIn > 0 {
		cred.Expiration = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	} else {
		cred.Expiration = distantFuture
	}

	if err := m.store(cred); err != nil {
		return Credential{}, err
	}
	m.setState(Valid)

	return cred, nil
}

func (m *Manager) store(cred Credential) error {
	data, err := cred.Marshal()
	if err != nil {
		return err
	}
	if err := m.secrets.Store(m.cfg.Identifier, data); err != nil {
		return faults.Errorf("storing credential %s: %w", m.cfg.Identifier, err)
	}
	return nil
}
