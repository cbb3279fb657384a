package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

var (
	protectedPrefixes = []string{
		"/dashboard",
		"/translate",
		"/vocabulary",
		"/practice",
		"/history",
		"/achievements",
		"/profile",
	}
	authOnlyPrefixes  = []string{"/login", "/register"}
	unguardedPrefixes = []string{"/api", "/assets"}
)

// RouteGuard redirects page requests based only on the presence of a
// non-empty auth-token cookie. The token is not verified here; API routes
// do that themselves.
func RouteGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hasToken := false
			if cookie, err := c.Cookie(authTokenCookie); err == nil && cookie != nil {
				hasToken = strings.TrimSpace(cookie.Value) != ""
			}
			if target, redirect := guardRedirect(c.Request().URL.Path, hasToken); redirect {
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

// guardRedirect decides where a page request goes.
func guardRedirect(path string, hasToken bool) (string, bool) {
	if path == "" {
		path = "/"
	}
	if matchesPrefix(path, unguardedPrefixes) {
		return "", false
	}
	switch {
	case !hasToken && matchesPrefix(path, protectedPrefixes):
		return loginPath + "?redirect=" + escapeRedirect(path), true
	case hasToken && matchesPrefix(path, authOnlyPrefixes):
		return dashboardPath, true
	default:
		return "", false
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// escapeRedirect query-escapes a path but keeps slashes readable.
func escapeRedirect(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}
