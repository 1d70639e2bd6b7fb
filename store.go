package gamenews

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/eringen/gamenews/post"
)

// ErrNotFound is returned when a requested post or user does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a SQLite database and provides the post and user operations.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and applies the embedded migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Pragmas go in the DSN so every pooled connection gets them, not just
	// the one that happens to run a PRAGMA statement. WAL lets readers see a
	// consistent snapshot while a writer commits.
	db, err := sql.Open("sqlite", "file:"+path+
		"?_pragma=journal_mode(WAL)"+
		"&_pragma=busy_timeout(5000)"+
		"&_pragma=synchronous(NORMAL)"+
		"&_pragma=cache_size(-8000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const postColumns = `id, title, content, content_html, category, author, image_data, image_type, image_url,
	likes, views, featured, semi_featured, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (post.Post, error) {
	var p post.Post
	var category string
	var featured, semiFeatured int
	var created, updated int64
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.ContentHTML, &category, &p.Author,
		&p.ImageData, &p.ImageType, &p.ImageURL, &p.Likes, &p.Views,
		&featured, &semiFeatured, &created, &updated)
	if err != nil {
		return post.Post{}, err
	}
	p.Category = post.Category(category)
	p.Featured = featured == 1
	p.SemiFeatured = semiFeatured == 1
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]post.Post, error) {
	defer rows.Close()
	var posts []post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// imageBlob maps an empty image to NULL so the column CHECK sees "no inline image".
func imageBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// CreatePost validates p, assigns its id and timestamps, renders its HTML and
// inserts it. On a validation error nothing is written.
func (s *Store) CreatePost(p *post.Post) error {
	if err := post.Validate(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	p.Render()
	_, err := s.db.Exec(`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Content, p.ContentHTML, string(p.Category), p.Author,
		imageBlob(p.ImageData), p.ImageType, p.ImageURL, p.Likes, p.Views,
		boolInt(p.Featured), boolInt(p.SemiFeatured), p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// UpdatePost replaces every editable field of the stored post with the
// values in p. Counters, CreatedAt and the featured flags are left alone;
// SetFeaturedRoster is the only writer of the flags. It returns ErrNotFound
// when no post has p.ID.
func (s *Store) UpdatePost(p *post.Post) error {
	if err := post.Validate(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	p.Render()
	res, err := s.db.Exec(`UPDATE posts SET
		title = ?, content = ?, content_html = ?, category = ?, author = ?,
		image_data = ?, image_type = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Content, p.ContentHTML, string(p.Category), p.Author,
		imageBlob(p.ImageData), p.ImageType, p.ImageURL, p.UpdatedAt.UnixNano(),
		p.ID)
	if err != nil {
		return fmt.Errorf("update post %s: %w", p.ID, err)
	}
	return expectRow(res)
}

// DeletePost removes a post by id.
func (s *Store) DeletePost(id string) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPost returns a single post by id.
func (s *Store) GetPost(id string) (post.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return post.Post{}, ErrNotFound
		}
		return post.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return p, nil
}

// IncrementLikes adds one like to the post and returns the new count.
func (s *Store) IncrementLikes(id string) (int, error) {
	return s.increment("likes", id)
}

// IncrementViews adds one view to the post and returns the new count.
func (s *Store) IncrementViews(id string) (int, error) {
	return s.increment("views", id)
}

// increment performs the read-modify-write inside a single statement so
// concurrent callers never lose an update. column is one of the constants
// above, never user input.
func (s *Store) increment(column, id string) (int, error) {
	var n int
	err := s.db.QueryRow(`UPDATE posts SET `+column+` = `+column+` + 1 WHERE id = ? RETURNING `+column, id).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment %s for %s: %w", column, id, err)
	}
	return n, nil
}

// SetFeaturedRoster makes exactly the given posts featured and semi-featured,
// clearing the flags everywhere else. Both flags are rewritten by one
// statement, so readers see either the old roster or the new one. Unknown
// ids are ignored; empty slices clear the corresponding flag.
func (s *Store) SetFeaturedRoster(featuredIDs, semiFeaturedIDs []string) error {
	featured, err := idList(featuredIDs)
	if err != nil {
		return err
	}
	semi, err := idList(semiFeaturedIDs)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE posts SET
		featured = id IN (SELECT value FROM json_each(?)),
		semi_featured = id IN (SELECT value FROM json_each(?))`, featured, semi)
	if err != nil {
		return fmt.Errorf("set featured roster: %w", err)
	}
	return nil
}

func idList(ids []string) (string, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListFeatured returns up to limit featured posts, newest first.
func (s *Store) ListFeatured(limit int) ([]post.Post, error) {
	return s.listFlagged("featured", limit)
}

// ListSemiFeatured returns up to limit semi-featured posts, newest first.
func (s *Store) ListSemiFeatured(limit int) ([]post.Post, error) {
	return s.listFlagged("semi_featured", limit)
}

func (s *Store) listFlagged(column string, limit int) ([]post.Post, error) {
	return s.query(s.db, `SELECT `+postColumns+` FROM posts WHERE `+column+` = 1
		ORDER BY created_at DESC, rowid DESC`+limitClause(limit))
}

// FrontPage holds the curated sections of the home page.
type FrontPage struct {
	Featured     []post.Post
	SemiFeatured []post.Post
}

// FrontPage reads both curated sections from one snapshot, so a roster
// replacement committed in between never shows half applied.
func (s *Store) FrontPage(featuredLimit, semiLimit int) (FrontPage, error) {
	var fp FrontPage
	err := s.readTx(func(tx *sql.Tx) error {
		var err error
		fp.Featured, err = s.query(tx, `SELECT `+postColumns+` FROM posts WHERE featured = 1
			ORDER BY created_at DESC, rowid DESC`+limitClause(featuredLimit))
		if err != nil {
			return err
		}
		fp.SemiFeatured, err = s.query(tx, `SELECT `+postColumns+` FROM posts WHERE semi_featured = 1
			ORDER BY created_at DESC, rowid DESC`+limitClause(semiLimit))
		return err
	})
	return fp, err
}

// ListByCategory returns up to limit posts in cat, newest first.
func (s *Store) ListByCategory(cat post.Category, limit int) ([]post.Post, error) {
	return s.ListPosts(post.Filter{Category: cat}, limit)
}

// ListPosts returns posts matching f in the requested order. A limit of
// zero or less returns every match.
func (s *Store) ListPosts(f post.Filter, limit int) ([]post.Post, error) {
	var where []string
	var args []any
	if needle := strings.ToLower(strings.TrimSpace(f.Search)); needle != "" {
		if f.SearchContent {
			where = append(where, `(instr(lower(title), ?) > 0 OR instr(lower(content), ?) > 0)`)
			args = append(args, needle, needle)
		} else {
			where = append(where, `instr(lower(title), ?) > 0`)
			args = append(args, needle)
		}
	}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, string(f.Category))
	}
	q := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY ` + orderClause(f.Sort) + limitClause(limit)
	return s.query(s.db, q, args...)
}

// ListForRoster returns every post for the featured manager, curated posts first.
func (s *Store) ListForRoster() ([]post.Post, error) {
	return s.query(s.db, `SELECT `+postColumns+` FROM posts
		ORDER BY featured DESC, semi_featured DESC, created_at DESC, rowid DESC`)
}

// ReplaceAllPosts deletes every post and inserts posts in one transaction.
func (s *Store) ReplaceAllPosts(posts []post.Post) error {
	return s.writeTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM posts`); err != nil {
			return err
		}
		for i := range posts {
			p := &posts[i]
			if err := post.Validate(p); err != nil {
				return fmt.Errorf("post %q: %w", p.Title, err)
			}
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = time.Now().UTC()
			}
			p.UpdatedAt = p.CreatedAt
			p.Render()
			_, err := tx.Exec(`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.Title, p.Content, p.ContentHTML, string(p.Category), p.Author,
				imageBlob(p.ImageData), p.ImageType, p.ImageURL, p.Likes, p.Views,
				boolInt(p.Featured), boolInt(p.SemiFeatured), p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
			if err != nil {
				return fmt.Errorf("insert post %q: %w", p.Title, err)
			}
		}
		return nil
	})
}

func orderClause(s post.Sort) string {
	switch s {
	case post.SortOldest:
		return `created_at ASC, rowid ASC`
	case post.SortMostLiked:
		return `likes DESC, created_at DESC, rowid DESC`
	case post.SortMostViewed:
		return `views DESC, created_at DESC, rowid DESC`
	default:
		return `created_at DESC, rowid DESC`
	}
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *Store) query(q querier, query string, args ...any) ([]post.Post, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return scanPosts(rows)
}

func (s *Store) readTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return fn(tx)
}

// writeTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) writeTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
