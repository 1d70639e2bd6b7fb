package gamenews

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/gamenews/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// page builds the layout values shared by every view from the request state.
func (a *App) page(c echo.Context, title, section string) views.Page {
	n := pageNotice(c)
	p := views.Page{
		Title:       title,
		Description: a.Config.Description,
		SiteName:    a.Config.Name,
		SiteURL:     a.Config.URL,
		Section:     section,
		CSRF:        CsrfToken(c),
		Notice:      views.Notice{Kind: n.Kind, Message: n.Message},
	}
	if pr, ok := CurrentPrincipal(c); ok {
		p.Principal = pr.Username
	}
	return p
}
