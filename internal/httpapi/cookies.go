package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"askverba.app/server/internal/auth"
	"askverba.app/server/internal/globaltime"
)

const (
	authTokenCookie    = "auth-token"
	authCustomerCookie = "auth-customer"
)

// customerCookie is the client-readable profile stored next to the token.
type customerCookie struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// cookieBridge owns the two auth cookies. Both share path, SameSite policy
// and a fixed Max-Age; only the token cookie is HttpOnly.
type cookieBridge struct {
	secure bool
}

// get returns the token and the decoded customer. A malformed customer
// cookie reads as absent.
func (b cookieBridge) get(c echo.Context) (string, *customerCookie) {
	token := ""
	if cookie, err := c.Cookie(authTokenCookie); err == nil && cookie != nil {
		token = strings.TrimSpace(cookie.Value)
	}

	cookie, err := c.Cookie(authCustomerCookie)
	if err != nil || cookie == nil || cookie.Value == "" {
		return token, nil
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return token, nil
	}
	var customer customerCookie
	if err := json.Unmarshal([]byte(raw), &customer); err != nil || strings.TrimSpace(customer.ID) == "" {
		return token, nil
	}
	return token, &customer
}

func (b cookieBridge) set(c echo.Context, token string, customer customerCookie) error {
	encoded, err := json.Marshal(customer)
	if err != nil {
		return err
	}
	maxAge := int(auth.SessionTTL / time.Second)
	expires := globaltime.UTC().Add(auth.SessionTTL)

	c.SetCookie(b.cookie(authTokenCookie, token, true, maxAge, expires))
	c.SetCookie(b.cookie(authCustomerCookie, url.QueryEscape(string(encoded)), false, maxAge, expires))
	return nil
}

func (b cookieBridge) clear(c echo.Context) {
	expired := globaltime.UTC().Add(-time.Hour)
	c.SetCookie(b.cookie(authTokenCookie, "", true, -1, expired))
	c.SetCookie(b.cookie(authCustomerCookie, "", false, -1, expired))
}

func (b cookieBridge) cookie(name, value string, httpOnly bool, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   b.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
		Expires:  expires.UTC(),
	}
}
