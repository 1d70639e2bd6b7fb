package views

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/gamenews/post"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"safeHTML":     func(s string) template.HTML { return template.HTML(s) },
	"jsonLD":       func(s string) template.JS { return template.JS(s) },
	"pathEscape":   url.PathEscape,
	"categoryPath": CategoryPath,
	"categories":   func() []post.Category { return post.Categories },
	"sorts":        func() []post.Sort { return post.Sorts },
	"lower":        strings.ToLower,
	"fieldError":   func(errs map[string]string, field string) string { return errs[field] },
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{
		"home", "category", "posts", "post", "post_form",
		"login", "dashboard", "admin_posts", "not_found", "server_error",
	} {
		pages[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html"))
	}
}

type view struct {
	Page Page
	Data any
}

// render executes the named page inside the shared layout. Output is
// buffered so a template error never leaves a half-written response.
func render(name string, p Page, data any) templ.Component {
	t := pages[name]
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, "layout.html", view{Page: p, Data: data}); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

// CategoryPath returns the listing path of a category ("/news/").
func CategoryPath(c post.Category) string {
	return "/" + c.Slug() + "/"
}
