package gamenews

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/gamenews/post"
	"github.com/eringen/gamenews/views"
)

// editorRoutes describes one entry point to the post editor. The admin
// panel and the public "write" pages share the handlers and differ only in
// where they live and where they send the user afterwards.
type editorRoutes struct {
	base   string // "/posts" or "/admin/posts"
	cancel string
	admin  bool
}

func (r editorRoutes) collection() string      { return r.base + "/" }
func (r editorRoutes) member(id string) string { return r.base + "/" + id + "/" }

func (r editorRoutes) afterSave(p post.Post) string {
	if r.admin {
		return r.collection()
	}
	return p.Link()
}

func (a *App) handleNewPost(r editorRoutes) echo.HandlerFunc {
	return func(c echo.Context) error {
		return a.renderPostForm(c, r, http.StatusOK, post.Post{Category: post.News}, nil)
	}
}

func (a *App) handleEditPost(r editorRoutes) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := a.Store.GetPost(c.Param("id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return a.postNotFound(c, r)
			}
			return err
		}
		return a.renderPostForm(c, r, http.StatusOK, p, nil)
	}
}

func (a *App) handleCreatePost(r editorRoutes) echo.HandlerFunc {
	return func(c echo.Context) error {
		var p post.Post
		if err := a.bindPostForm(c, &p); err != nil {
			return a.postFormError(c, r, p, err)
		}
		p.Normalize(a.defaultAuthor(c, r))
		if err := a.Store.CreatePost(&p); err != nil {
			return a.postFormError(c, r, p, err)
		}
		a.Cache.Invalidate()
		c.Logger().Infof("post %s created: %q", p.ID, p.Title)
		addNotice(c, "success", "Post created successfully")
		return c.Redirect(http.StatusSeeOther, r.afterSave(p))
	}
}

func (a *App) handleUpdatePost(r editorRoutes) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := a.Store.GetPost(c.Param("id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return a.postNotFound(c, r)
			}
			return err
		}
		if err := a.bindPostForm(c, &p); err != nil {
			return a.postFormError(c, r, p, err)
		}
		p.Normalize(a.defaultAuthor(c, r))
		if err := a.Store.UpdatePost(&p); err != nil {
			if errors.Is(err, ErrNotFound) {
				return a.postNotFound(c, r)
			}
			return a.postFormError(c, r, p, err)
		}
		a.Cache.Invalidate()
		c.Logger().Infof("post %s updated", p.ID)
		addNotice(c, "success", "Post updated successfully")
		return c.Redirect(http.StatusSeeOther, r.afterSave(p))
	}
}

func (a *App) handleDeletePost(r editorRoutes) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := a.Store.DeletePost(id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return a.postNotFound(c, r)
			}
			return err
		}
		a.Cache.Invalidate()
		c.Logger().Infof("post %s deleted", id)
		addNotice(c, "success", "Post deleted successfully")
		if r.admin {
			return c.Redirect(http.StatusSeeOther, r.collection())
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
}

// bindPostForm copies the submitted fields onto p. Fields missing from the
// form are treated as cleared, so an edit replaces every editable field.
// The featured flags are not editable here; the roster form owns them.
// The image is resolved in order: a new upload, a URL, an explicit
// removal; otherwise an existing inline image is kept.
func (a *App) bindPostForm(c echo.Context, p *post.Post) error {
	p.Title = c.FormValue("title")
	p.Content = c.FormValue("content")
	p.Category = post.Category(c.FormValue("category"))
	p.Author = c.FormValue("author")

	fh, err := c.FormFile("imageFile")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	imageURL := strings.TrimSpace(c.FormValue("image"))
	switch {
	case fh != nil:
		_, data, err := a.readUpload(fh)
		if err != nil {
			if errors.Is(err, errImageTooLarge) || errors.Is(err, errNotAnImage) {
				return &post.ValidationError{Fields: map[string]string{"image": err.Error()}}
			}
			return err
		}
		p.SetInlineImage(data, "image/jpeg")
	case imageURL != "":
		p.SetImageURL(imageURL)
	case c.FormValue("removeImage") != "" || !p.HasInlineImage():
		p.SetImageURL("")
	}
	return nil
}

// defaultAuthor is the signed-in username for the admin panel and the
// configured default for the public editor.
func (a *App) defaultAuthor(c echo.Context, r editorRoutes) string {
	if pr, ok := CurrentPrincipal(c); ok && r.admin {
		return pr.Username
	}
	return a.Config.DefaultAuthor
}

func (a *App) postFormError(c echo.Context, r editorRoutes, p post.Post, err error) error {
	if post.IsValidationError(err) {
		return a.renderPostForm(c, r, http.StatusUnprocessableEntity, p, post.FieldErrors(err))
	}
	return err
}

func (a *App) postNotFound(c echo.Context, r editorRoutes) error {
	if r.admin {
		addNotice(c, "error", "Post not found")
		return c.Redirect(http.StatusSeeOther, r.collection())
	}
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, "Not found", "")))
}

func (a *App) renderPostForm(c echo.Context, r editorRoutes, status int, p post.Post, errs map[string]string) error {
	data := views.PostFormData{
		Post:   p,
		Errors: errs,
		Action: r.collection(),
		Method: http.MethodPost,
		Admin:  r.admin,
		Cancel: r.cancel,
	}
	title := "New post"
	if p.ID != "" {
		title = "Edit post"
		data.Action = r.member(p.ID)
		data.Method = http.MethodPut
		if !r.admin {
			data.Cancel = p.Link()
		}
	}
	section := ""
	if r.admin {
		section = "admin"
	}
	page := a.page(c, title, section)
	if len(errs) > 0 {
		page.Notice = views.Notice{Kind: "error", Message: "Please fix the highlighted fields"}
	}
	return RenderStatus(c, status, a.Views.PostForm(page, data))
}
