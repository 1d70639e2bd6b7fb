// Package views holds the default page components. Each page is an
// html/template file embedded in the binary, rendered inside the shared
// layout and exposed as a templ.Component so it can be swapped for a
// generated templ view without touching the handlers.
package views

import "github.com/a-h/templ"

// Home renders the front page.
func Home(p Page, d HomeData) templ.Component { return render("home", p, d) }

// Category lists the posts of one category.
func Category(p Page, d CategoryData) templ.Component { return render("category", p, d) }

// Posts is the public archive of every post.
func Posts(p Page, d PostListData) templ.Component { return render("posts", p, d) }

// Post renders a single article with its like button.
func Post(p Page, d PostData) templ.Component { return render("post", p, d) }

// PostForm is the create and edit form. d.Post.ID is empty when creating.
func PostForm(p Page, d PostFormData) templ.Component { return render("post_form", p, d) }

// Login renders the sign-in form.
func Login(p Page, d LoginData) templ.Component { return render("login", p, d) }

// Dashboard renders the featured roster manager.
func Dashboard(p Page, d DashboardData) templ.Component { return render("dashboard", p, d) }

// AdminPosts lists posts with edit and delete actions.
func AdminPosts(p Page, d PostListData) templ.Component { return render("admin_posts", p, d) }

// NotFound is shown with a 404 status.
func NotFound(p Page) templ.Component { return render("not_found", p, nil) }

// ServerError is shown for unexpected failures.
func ServerError(p Page) templ.Component { return render("server_error", p, nil) }
