package orchestrator

import (
	"strings"

	"github.com/labstack/echo/v4"

	"careerpilot-utils/internal/config"
	"careerpilot-utils/internal/pipeline/aierrors"
)

// Authenticator resolves the caller identity used for rate limiting
type Authenticator interface {
	// Identify returns the identity for the request, or an authentication
	// error when the deployment requires credentials and none are present
	Identify(c echo.Context) (string, *aierrors.AIError)
}

// HeaderAuthenticator identifies callers by an API-key header. When auth is
// not required, anonymous callers share the configured service identity so
// they still land in one rate-limit bucket.
type HeaderAuthenticator struct {
	headerName      string
	serviceIdentity string
	requireAuth     bool
}

// NewHeaderAuthenticator builds an authenticator from configuration
func NewHeaderAuthenticator(cfg *config.Config) *HeaderAuthenticator {
	return &HeaderAuthenticator{
		headerName:      cfg.Auth.HeaderName,
		serviceIdentity: cfg.Auth.ServiceIdentity,
		requireAuth:     cfg.Auth.RequireAuth,
	}
}

// Identify implements Authenticator
func (a *HeaderAuthenticator) Identify(c echo.Context) (string, *aierrors.AIError) {
	key := strings.TrimSpace(c.Request().Header.Get(a.headerName))
	if key != "" {
		return key, nil
	}

	if a.requireAuth {
		return "", aierrors.NewAuthenticationError("missing " + a.headerName + " header")
	}

	return a.serviceIdentity, nil
}
