package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAdmin           = errors.New("admin access required")
)

// Principal is the authenticated caller of an admin endpoint
type Principal struct {
	Name  string
	Email string
}

// Authenticator resolves a bearer token into an admin principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// StaticTokenAuthenticator accepts exactly one shared admin token
type StaticTokenAuthenticator struct {
	token []byte
}

func NewStaticTokenAuthenticator(token string) *StaticTokenAuthenticator {
	return &StaticTokenAuthenticator{token: []byte(token)}
}

func (a *StaticTokenAuthenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingCredentials
	}
	// An empty configured token disables admin access entirely
	if len(a.token) == 0 || subtle.ConstantTimeCompare(a.token, []byte(token)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return &Principal{Name: "admin"}, nil
}

// CasdoorConfig holds the identity provider application settings
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type jwtParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthenticator validates Casdoor-issued JWTs and requires the admin flag
type CasdoorAuthenticator struct {
	parser jwtParser
	logger *slog.Logger
}

func NewCasdoorAuthenticator(cfg CasdoorConfig, logger *slog.Logger) (*CasdoorAuthenticator, error) {
	if cfg.Endpoint == "" || cfg.Certificate == "" {
		return nil, fmt.Errorf("casdoor endpoint and certificate are required")
	}

	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &CasdoorAuthenticator{parser: client, logger: logger}, nil
}

func (a *CasdoorAuthenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingCredentials
	}

	claims, err := a.parser.ParseJwtToken(token)
	if err != nil {
		a.logger.Debug("Rejected admin token", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if !claims.User.IsAdmin {
		return nil, ErrNotAdmin
	}

	return &Principal{
		Name:  claims.User.Name,
		Email: claims.User.Email,
	}, nil
}
