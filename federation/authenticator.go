package federation

import (
	"context"
	"errors"
	"fmt"
	"time"

	identity "github.com/pace-collab/go-identity"
)

// FederatedAuthenticator orchestrates federated login flows. Completing a
// flow always lands on a normalized identity: first-time visitors get a
// fresh student account, returning visitors keep the role and locale
// stored on their record.
type FederatedAuthenticator struct {
	providers    map[string]Provider
	stateManager StateManager
	userRepo     identity.Users
	tokenService identity.TokenService
	activitySink identity.ActivitySink
	logger       identity.Logger
	config       Config
}

// Config configures the federated authenticator.
type Config struct {
	BaseURL              string
	CallbackPath         string
	DefaultRedirectURL   string
	StateEncryptionKey   []byte
	StateHMACKey         []byte
	StateTTL             time.Duration
	RequireEmailVerified bool
	DefaultLocale        string
}

// Option configures the federated authenticator.
type Option func(*FederatedAuthenticator)

// NewFederatedAuthenticator creates a new federated authenticator.
func NewFederatedAuthenticator(
	userRepo identity.Users,
	tokenService identity.TokenService,
	config Config,
	opts ...Option,
) *FederatedAuthenticator {
	cfg := config
	if cfg.StateTTL == 0 {
		cfg.StateTTL = 10 * time.Minute
	}

	fa := &FederatedAuthenticator{
		providers:    make(map[string]Provider),
		userRepo:     userRepo,
		tokenService: tokenService,
		config:       cfg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(fa)
		}
	}

	if fa.stateManager == nil {
		fa.stateManager = NewEncryptedStateManager(
			cfg.StateEncryptionKey,
			cfg.StateHMACKey,
			cfg.StateTTL,
		)
	}

	return fa
}

// WithProvider registers a federated provider.
func WithProvider(provider Provider) Option {
	return func(fa *FederatedAuthenticator) {
		if provider == nil {
			return
		}
		fa.providers[provider.Name()] = provider
	}
}

// WithStateManager sets a custom state manager.
func WithStateManager(sm StateManager) Option {
	return func(fa *FederatedAuthenticator) {
		fa.stateManager = sm
	}
}

// WithActivitySink sets the activity sink for audit logging.
func WithActivitySink(sink identity.ActivitySink) Option {
	return func(fa *FederatedAuthenticator) {
		fa.activitySink = sink
	}
}

// WithLogger sets the logger.
func WithLogger(logger identity.Logger) Option {
	return func(fa *FederatedAuthenticator) {
		fa.logger = logger
	}
}

// BeginAuth starts the OAuth flow for a provider.
func (fa *FederatedAuthenticator) BeginAuth(
	ctx context.Context,
	providerName string,
	opts ...BeginAuthOption,
) (*AuthRedirect, error) {
	provider, ok := fa.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, providerName)
	}

	if fa.stateManager == nil {
		return nil, ErrInvalidState
	}

	cfg := &beginAuthConfig{
		redirectURL: fa.config.DefaultRedirectURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	codeChallenge := computeCodeChallenge(codeVerifier)

	state := &OAuthState{
		Nonce:        generateNonce(),
		Provider:     providerName,
		CodeVerifier: codeVerifier,
		RedirectURL:  cfg.redirectURL,
		IssuedAt:     time.Now().Unix(),
		ExpiresAt:    time.Now().Add(fa.config.StateTTL).Unix(),
	}

	stateToken, err := fa.stateManager.Encode(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	authURL := provider.AuthCodeURL(stateToken, WithPKCE(codeChallenge, "S256"))

	return &AuthRedirect{
		URL:      authURL,
		State:    stateToken,
		Provider: providerName,
	}, nil
}

// CompleteAuth finishes the OAuth flow after callback.
func (fa *FederatedAuthenticator) CompleteAuth(
	ctx context.Context,
	providerName string,
	code string,
	stateToken string,
) (*AuthResult, error) {
	if fa.stateManager == nil {
		return nil, ErrInvalidState
	}

	state, err := fa.stateManager.Decode(stateToken)
	if err != nil {
		if errors.Is(err, ErrStateExpired) {
			return nil, ErrStateExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if state.Provider != providerName {
		return nil, fmt.Errorf("%w: provider mismatch", ErrInvalidState)
	}

	if time.Now().Unix() > state.ExpiresAt {
		return nil, ErrStateExpired
	}

	provider, ok := fa.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, providerName)
	}

	token, err := provider.Exchange(ctx, code, WithCodeVerifier(state.CodeVerifier))
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, providerName, "exchange", err)
	}

	profile, err := provider.UserInfo(ctx, token)
	if err != nil {
		return nil, wrapProviderError(ErrUserInfoFailed, providerName, "user_info", err)
	}

	if fa.config.RequireEmailVerified && !profile.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	normalized, err := Normalize(profile, fa.config.DefaultLocale)
	if err != nil {
		return nil, err
	}

	user, err := fa.userRepo.GetOrCreate(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve federated user: %w", err)
	}

	isNewUser := user.ID == normalized.ID

	aid := identity.NewIdentityFromUser(user)
	if aid == nil {
		return nil, identity.ErrIdentityNotFound
	}

	if user.IsSuspended() {
		return nil, identity.ErrAccountSuspended
	}

	jwtToken, err := fa.tokenService.Generate(aid)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if fa.activitySink != nil {
		_ = fa.activitySink.Record(ctx, identity.ActivityEvent{
			EventType:  identity.ActivityEventFederatedLogin,
			UserID:     aid.ID(),
			Actor:      identity.ActorRef{Type: "federated", ID: providerName},
			OccurredAt: time.Now(),
			Metadata: map[string]any{
				"provider":         providerName,
				"provider_user_id": profile.ProviderUserID,
				"is_new_user":      isNewUser,
			},
		})
	}

	return &AuthResult{
		User:        aid,
		Token:       jwtToken,
		IsNewUser:   isNewUser,
		Provider:    providerName,
		Profile:     profile,
		RedirectURL: state.RedirectURL,
	}, nil
}

// ListProviders returns all registered providers.
func (fa *FederatedAuthenticator) ListProviders() []ProviderInfo {
	var providers []ProviderInfo
	for name, p := range fa.providers {
		providers = append(providers, ProviderInfo{
			Name:    name,
			AuthURL: p.AuthCodeURL(""),
		})
	}
	return providers
}

// ProviderInfo describes an available provider.
type ProviderInfo struct {
	Name    string
	AuthURL string
}

// AuthRedirect contains the authorization URL for redirecting users.
type AuthRedirect struct {
	URL      string
	State    string
	Provider string
}

// AuthResult contains the result of a successful authentication.
type AuthResult struct {
	User        identity.Identity
	Token       string
	IsNewUser   bool
	Provider    string
	Profile     *Profile
	RedirectURL string
}

// BeginAuthOption configures the auth initiation.
type BeginAuthOption func(*beginAuthConfig)

type beginAuthConfig struct {
	redirectURL string
}

// WithRedirectURL sets the post-auth redirect URL.
func WithRedirectURL(url string) BeginAuthOption {
	return func(c *beginAuthConfig) {
		c.redirectURL = url
	}
}
