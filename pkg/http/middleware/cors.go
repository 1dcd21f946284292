package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowOrigins  []string
	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string
	MaxAge        int // seconds, preflight cache
}

// CORS returns CORS middleware. A preflight from an origin outside
// AllowOrigins is answered with 403; simple requests pass through without
// CORS headers.
func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			h := c.Response().Header()
			origin := req.Header.Get(echo.HeaderOrigin)
			preflight := req.Method == http.MethodOptions && req.Header.Get(echo.HeaderAccessControlRequestMethod) != ""

			h.Add(echo.HeaderVary, echo.HeaderOrigin)
			if origin == "" {
				return next(c)
			}

			allowed, wildcard := matchOrigin(cfg.AllowOrigins, origin)
			if !allowed {
				if preflight {
					return c.NoContent(http.StatusForbidden)
				}
				return next(c)
			}

			if wildcard {
				h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			} else {
				h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			}
			if expose != "" {
				h.Set(echo.HeaderAccessControlExposeHeaders, expose)
			}

			if !preflight {
				return next(c)
			}
			if methods != "" {
				h.Set(echo.HeaderAccessControlAllowMethods, methods)
			}
			if headers != "" {
				h.Set(echo.HeaderAccessControlAllowHeaders, headers)
			}
			if cfg.MaxAge > 0 {
				h.Set(echo.HeaderAccessControlMaxAge, strconv.Itoa(cfg.MaxAge))
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}

// OriginAllowed reports whether origin is listed in allow. "*" allows any origin.
func OriginAllowed(allow []string, origin string) bool {
	ok, _ := matchOrigin(allow, origin)
	return ok
}

func matchOrigin(allow []string, origin string) (ok, wildcard bool) {
	for _, o := range allow {
		if o == "*" {
			return true, true
		}
		if strings.EqualFold(o, origin) {
			return true, false
		}
	}
	return false, false
}
