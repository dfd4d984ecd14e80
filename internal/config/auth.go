package config

import (
	"fmt"
	"log/slog"

	"github.com/cultivated-hq/pulse-service/internal/auth"
)

const (
	AuthModeToken   = "token"
	AuthModeCasdoor = "casdoor"
)

type CasdoorSettings struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type AuthConfig struct {
	Mode       string
	AdminToken string
	Casdoor    CasdoorSettings
}

// CreateAuthenticator builds the admin authenticator for the configured mode
func (c *AuthConfig) CreateAuthenticator(logger *slog.Logger) (auth.Authenticator, error) {
	switch c.Mode {
	case AuthModeCasdoor:
		logger.Info("Using Casdoor admin authentication", "endpoint", c.Casdoor.Endpoint)
		return auth.NewCasdoorAuthenticator(auth.CasdoorConfig{
			Endpoint:         c.Casdoor.Endpoint,
			ClientID:         c.Casdoor.ClientID,
			ClientSecret:     c.Casdoor.ClientSecret,
			Certificate:      c.Casdoor.Certificate,
			OrganizationName: c.Casdoor.OrganizationName,
			ApplicationName:  c.Casdoor.ApplicationName,
		}, logger)
	case AuthModeToken, "":
		if c.AdminToken == "" {
			logger.Warn("ADMIN_TOKEN not set, admin endpoints will reject every request")
		}
		return auth.NewStaticTokenAuthenticator(c.AdminToken), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", c.Mode)
	}
}
