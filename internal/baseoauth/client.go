package baseoauth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"

	"github.com/castboard/castboard/internal/config"
)

const (
	// StateCookieName is the cookie carrying the state between redirect and callback.
	StateCookieName = "base_oauth_state"

	// StateCookieMaxAge is the cookie lifetime in seconds.
	StateCookieMaxAge = 600

	// AuthPath starts the authorization.
	AuthPath = "/api/base/auth"

	// CallbackPath receives the authorization code.
	CallbackPath = "/api/base/callback"
)

// Credentials are the OAuth client of one store.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// RedirectURL returns the callback url below appURL.
func RedirectURL(appURL string) string {
	return strings.TrimRight(appURL, "/") + CallbackPath
}

// OAuth2Config builds the client configuration for one store.
func OAuth2Config(cfg config.Base, appURL string, creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  RedirectURL(appURL),
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthCodeURL returns the authorization url with response_type=code, client_id,
// redirect_uri, scope and state.
func AuthCodeURL(cfg config.Base, appURL string, creds Credentials, state string) (string, error) {
	if creds.ClientID == "" {
		return "", ErrNoClientID
	}

	return OAuth2Config(cfg, appURL, creds).AuthCodeURL(state), nil
}

// Exchange trades the authorization code for a token.
func Exchange(ctx context.Context, cfg config.Base, appURL string, creds Credentials, code string) (*oauth2.Token, error) {
	if creds.ClientID == "" {
		return nil, ErrNoClientID
	}

	return OAuth2Config(cfg, appURL, creds).Exchange(ctx, code)
}

// StateCookie returns the cookie holding state. secure is set in production.
func StateCookie(state string, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   StateCookieMaxAge,
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// ExpiredStateCookie deletes the state cookie.
func ExpiredStateCookie(secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
