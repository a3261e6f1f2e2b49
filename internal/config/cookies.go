package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

// SessionClaims identify a board session. The session itself lives in
// the controller; the token only carries its id and who it belongs to.
type SessionClaims struct {
	SessionId string `json:"session_id"`
	CardId    string `json:"card_id"`
	Team      string `json:"team,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func NewSessionClaims(sessionId, cardId, team, role string) *SessionClaims {
	return &SessionClaims{
		SessionId: sessionId,
		CardId:    cardId,
		Team:      team,
		Role:      role,
	}
}

func NewCookies(j *JWT) (*Cookies, error) {
	domain, ok := os.LookupEnv("COOKIES_DOMAIN")
	if !ok {
		return nil, fmt.Errorf("no COOKIES_DOMAIN env variable set")
	}

	secureStr, ok := os.LookupEnv("COOKIES_SECURE")
	if !ok {
		return nil, fmt.Errorf("no COOKIES_SECURE env variable set")
	}
	secure := secureStr != "0"

	sameSiteStr, ok := os.LookupEnv("COOKIES_SAMESITE")
	if !ok {
		return nil, fmt.Errorf("no COOKIES_SAMESITE env variable set")
	}

	return &Cookies{
		Domain:   domain,
		Secure:   secure,
		SameSite: parseSameSite(sameSiteStr),
		jwt:      j,
	}, nil
}

// NewLocalCookies returns host-only, non-secure cookies for local runs and
// tests.
func NewLocalCookies(j *JWT) *Cookies {
	return &Cookies{SameSite: http.SameSiteLaxMode, jwt: j}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     "/",
		Value:    "delete",
		MaxAge:   -1,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "sign",
		Path:     "/",
		Value:    "delete",
		MaxAge:   -1,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// Issue signs the claims and splits the token over two cookies: the
// readable header and payload, and the http-only signature.
func (c *Cookies) Issue(w http.ResponseWriter, claims *SessionClaims) error {
	expires := time.Now().Add(c.jwt.tokenLifetime)
	claims.ExpiresAt = jwt.NewNumericDate(expires)

	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign session claims: %w", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	header, payload, signature := parts[0], parts[1], parts[2]

	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     "/",
		Value:    header + "." + payload,
		Expires:  expires,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "sign",
		Path:     "/",
		Value:    signature,
		Expires:  expires,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	return nil
}

func (c *Cookies) ParseSessionClaims(r *http.Request) (*SessionClaims, error) {
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(
		authCookie.Value+"."+signCookie.Value, &SessionClaims{},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
