package account

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/cobaemon/portfolio/pkg/session"
)

// OAuth provider identifiers.
const OAuthProviderGoogle = "google"

const sessionKeyOAuthState = "oauth_state"

// ProviderAdapter abstracts provider-specific OAuth behavior behind a
// minimal interface. Implementations encapsulate the protocol details
// (oauth2.Config, token exchange, profile endpoints) and expose only what
// the login flow needs.
type ProviderAdapter interface {
	ProviderID() string
	AuthURL(state string) string
	// ResolveProfile exchanges the authorization code and returns the
	// normalized profile. Invalid codes surface as ErrOAuthInvalidCode.
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}

// ProviderProfile is the normalized identity a provider asserts.
type ProviderProfile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
}

// GoogleConfig holds the Google OAuth credentials.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL"`
}

// Enabled reports whether credentials are configured; social login routes are
// mounted only when they are.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// GoogleAdapter implements ProviderAdapter for Google sign-in.
type GoogleAdapter struct {
	oauth *oauth2.Config
}

func NewGoogleAdapter(cfg GoogleConfig) *GoogleAdapter {
	return &GoogleAdapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (a *GoogleAdapter) ProviderID() string { return OAuthProviderGoogle }

func (a *GoogleAdapter) AuthURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

func (a *GoogleAdapter) ResolveProfile(ctx context.Context, code string) (ProviderProfile, error) {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return ProviderProfile{}, errors.Join(ErrOAuthInvalidCode, err)
	}

	resp, err := a.oauth.Client(ctx, token).Get("https://openidconnect.googleapis.com/v1/userinfo")
	if err != nil {
		return ProviderProfile{}, errors.Join(ErrOAuthInvalidCode, err)
	}
	defer resp.Body.Close()

	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ProviderProfile{}, errors.Join(ErrOAuthInvalidCode, err)
	}
	if info.Email == "" {
		return ProviderProfile{}, ErrOAuthNoEmail
	}

	return ProviderProfile{
		ProviderUserID: info.Sub,
		Email:          info.Email,
		EmailVerified:  info.EmailVerified,
		Name:           info.Name,
	}, nil
}

// OAuthStorage defines the storage operations needed by social login.
type OAuthStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	MarkEmailVerified(ctx context.Context, userID uuid.UUID, email string) error
}

// OAuthService completes social login: it verifies the provider's assertion,
// links or creates the local user, and hands back the user for session
// establishment. Only provider-verified emails are accepted, preventing
// account takeover through an unverified address.
type OAuthService struct {
	storage  OAuthStorage
	sessions *session.Manager
	adapters map[string]ProviderAdapter
	log      *slog.Logger
}

func NewOAuthService(storage OAuthStorage, sessions *session.Manager, log *slog.Logger, adapters ...ProviderAdapter) *OAuthService {
	if log == nil {
		log = slog.Default()
	}
	m := make(map[string]ProviderAdapter, len(adapters))
	for _, a := range adapters {
		m[a.ProviderID()] = a
	}
	return &OAuthService{storage: storage, sessions: sessions, adapters: m, log: log}
}

// Begin stores an anti-CSRF state token in the session and returns the
// provider authorization URL.
func (s *OAuthService) Begin(ctx context.Context, w http.ResponseWriter, r *http.Request, providerID string) (string, error) {
	adapter, ok := s.adapters[providerID]
	if !ok {
		return "", ErrOAuthUnknownPartner
	}

	state := uuid.NewString()
	if err := s.sessions.Put(ctx, w, r, sessionKeyOAuthState, state); err != nil {
		return "", err
	}
	return adapter.AuthURL(state), nil
}

// Callback validates state, resolves the provider profile, and returns the
// linked-or-created local user.
func (s *OAuthService) Callback(ctx context.Context, r *http.Request, providerID, state, code string) (*User, error) {
	adapter, ok := s.adapters[providerID]
	if !ok {
		return nil, ErrOAuthUnknownPartner
	}

	stored, ok := s.sessions.Pop(ctx, r, sessionKeyOAuthState)
	if !ok || stored != state || state == "" {
		return nil, ErrOAuthStateMismatch
	}

	profile, err := adapter.ResolveProfile(ctx, code)
	if err != nil {
		return nil, err
	}
	if !profile.EmailVerified {
		return nil, ErrOAuthEmailUnverified
	}

	emailAddr := strings.ToLower(strings.TrimSpace(profile.Email))
	if user, err := s.storage.GetUserByEmail(ctx, emailAddr); err == nil {
		return user, nil
	}

	user, err := NewUser(usernameFromEmail(emailAddr), emailAddr, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	// The provider already verified the address.
	if err := s.storage.MarkEmailVerified(ctx, user.ID, emailAddr); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user created via oauth",
		slog.String("provider", providerID), slog.String("user_id", user.ID.String()))
	return user, nil
}

func usernameFromEmail(emailAddr string) string {
	local, _, _ := strings.Cut(emailAddr, "@")
	if local == "" {
		return emailAddr
	}
	return local
}
