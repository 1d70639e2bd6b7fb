package gamenews

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName = "gamenews_session"

	principalKey = "principal"
	noticeKey    = "notice"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())
	e.Pre(middleware.BodyLimit(bodyLimit(a.Config.MaxUploadSize)))
	e.Pre(methodOverride)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") || strings.HasPrefix(path, "/uploads/") ||
				strings.HasSuffix(path, "/image/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))
	e.Use(a.loadRequestState)

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				strings.HasPrefix(path, "/uploads") ||
				path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
		},
	}))

	e.Use(cacheControlMiddleware)
}

// bodyLimit leaves headroom above the upload limit for the other form fields.
func bodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dM", maxUpload>>20+2)
}

// multipartMemory matches the in-memory threshold Echo uses for FormFile.
const multipartMemory = 32 << 20

// methodOverride turns a POST form carrying a _method field into PUT or
// DELETE. HTML forms can only POST, and routing needs the real verb, so this
// runs in Pre, after the body limit. A form that outgrows the limit is
// rejected here with 413.
func methodOverride(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodPost {
			return next(c)
		}
		var err error
		ct := req.Header.Get(echo.HeaderContentType)
		switch {
		case strings.HasPrefix(ct, echo.MIMEMultipartForm):
			err = req.ParseMultipartForm(multipartMemory)
		case strings.HasPrefix(ct, echo.MIMEApplicationForm):
			err = req.ParseForm()
		default:
			return next(c)
		}
		if err != nil {
			if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
				return echo.ErrStatusRequestEntityTooLarge
			}
			return echo.NewHTTPError(http.StatusBadRequest, "malformed form body")
		}
		switch m := strings.ToUpper(req.FormValue("_method")); m {
		case http.MethodPut, http.MethodDelete:
			req.Method = m
		}
		return next(c)
	}
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"), strings.HasPrefix(path, "/uploads/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		case strings.HasSuffix(path, "/image/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		default:
			// Pages carry view counts, like counts and session state.
			c.Response().Header().Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 24,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// loadRequestState reads the session once per request and stores the
// signed-in Principal and any pending Notice on the context. Handlers read
// them with CurrentPrincipal and pageNotice instead of touching the session.
// The account is looked up on every request, so a deleted or deactivated
// user is signed out on their next click.
func (a *App) loadRequestState(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(sessionName, c)
		if err != nil {
			c.Logger().Warnf("session: %v", err)
			return next(c)
		}
		if id, ok := sess.Values["user_id"].(string); ok && id != "" {
			u, err := a.Store.GetUser(id)
			switch {
			case err == nil && u.Active:
				c.Set(principalKey, Principal{UserID: u.ID, Username: u.Username, Role: u.Role})
			case err == nil || errors.Is(err, ErrNotFound):
				c.Logger().Infof("session for user %s dropped: account missing or inactive", id)
				clearPrincipal(sess)
				if err := sess.Save(c.Request(), c.Response()); err != nil {
					c.Logger().Warnf("session: %v", err)
				}
			default:
				return err
			}
		}
		var notice Notice
		for _, kind := range []string{"error", "success"} {
			if flashes := sess.Flashes(kind); len(flashes) > 0 {
				if msg, ok := flashes[len(flashes)-1].(string); ok && notice.Message == "" {
					notice = Notice{Kind: kind, Message: msg}
				}
			}
		}
		if notice.Message != "" {
			c.Set(noticeKey, notice)
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				c.Logger().Warnf("session: %v", err)
			}
		}
		return next(c)
	}
}

// requireAuth redirects visitors without a session to the login page.
func (a *App) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentPrincipal(c); !ok {
			if c.Request().Header.Get("X-Requested-With") == "fetch" {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "error": "Authentication required"})
			}
			addNotice(c, "error", "Please log in to access this page")
			return c.Redirect(http.StatusSeeOther, "/admin/login/")
		}
		return next(c)
	}
}

// CurrentPrincipal returns the signed-in user loaded for this request.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// IsAdmin reports whether the request carries an authenticated session.
func IsAdmin(c echo.Context) bool {
	_, ok := CurrentPrincipal(c)
	return ok
}

func pageNotice(c echo.Context) Notice {
	n, _ := c.Get(noticeKey).(Notice)
	return n
}

// addNotice queues a message for the next rendered page.
func addNotice(c echo.Context, kind, msg string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		c.Logger().Warnf("session: %v", err)
		return
	}
	sess.AddFlash(msg, kind)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Warnf("session: %v", err)
	}
}

func setPrincipal(c echo.Context, u User) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["user_id"] = u.ID
	sess.Values["username"] = u.Username
	sess.Values["role"] = string(u.Role)
	return sess.Save(c.Request(), c.Response())
}

func clearPrincipal(sess *sessions.Session) {
	delete(sess.Values, "user_id")
	delete(sess.Values, "username")
	delete(sess.Values, "role")
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
