package gamenews

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/gamenews/post"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seedPost creates a post with created set explicitly so ordering is deterministic.
func seedPost(t *testing.T, s *Store, title string, cat post.Category, created time.Time) post.Post {
	t.Helper()
	p := post.Post{
		Title:     title,
		Content:   "Body of " + title,
		Category:  cat,
		Author:    "Tester",
		CreatedAt: created,
	}
	require.NoError(t, s.CreatePost(&p))
	return p
}

func ids(posts []post.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	require.NotNil(t, s.db)
}

func TestNewStoreReopensMigratedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	p := post.Post{Title: "Persisted", Content: "x", Category: post.News}
	require.NoError(t, s.CreatePost(&p))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	p := post.Post{
		Title:    "Patch 1.2 released",
		Content:  "Balance changes for **every** class.",
		Category: post.News,
		Author:   "News Desk",
		ImageURL: "https://example.com/patch.jpg",
	}
	require.NoError(t, s.CreatePost(&p))
	require.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Patch 1.2 released", got.Title)
	assert.Equal(t, post.News, got.Category)
	assert.Equal(t, "News Desk", got.Author)
	assert.Equal(t, "https://example.com/patch.jpg", got.ImageURL)
	assert.Nil(t, got.ImageData)
	assert.Zero(t, got.Likes)
	assert.Zero(t, got.Views)
	assert.Contains(t, got.ContentHTML, "<strong>every</strong>")
	assert.True(t, got.CreatedAt.Equal(p.CreatedAt))
}

func TestCreatePostInlineImage(t *testing.T) {
	s := setupTestStore(t)

	p := post.Post{Title: "Screenshots", Content: "Look", Category: post.Reviews}
	p.SetInlineImage([]byte{0xff, 0xd8, 0xff}, "image/jpeg")
	require.NoError(t, s.CreatePost(&p))

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, got.ImageData)
	assert.Equal(t, "image/jpeg", got.ImageType)
	assert.Empty(t, got.ImageURL)
	assert.Equal(t, "/posts/"+p.ID+"/image/", got.ImageSrc())
}

func TestCreatePostValidationWritesNothing(t *testing.T) {
	s := setupTestStore(t)

	cases := map[string]post.Post{
		"blank title":    {Title: "   ", Content: "x", Category: post.News},
		"long title":     {Title: string(make([]rune, post.MaxTitleLen+1)), Content: "x", Category: post.News},
		"empty content":  {Title: "T", Content: "", Category: post.News},
		"bad category":   {Title: "T", Content: "x", Category: "Guides"},
		"missing cat":    {Title: "T", Content: "x"},
		"image conflict": {Title: "T", Content: "x", Category: post.News, ImageData: []byte{1}, ImageType: "image/png", ImageURL: "https://e.com/a.png"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.CreatePost(&p)
			require.Error(t, err)
			assert.True(t, post.IsValidationError(err), "got %v", err)
		})
	}

	all, err := s.ListPosts(post.Filter{}, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdatePost(t *testing.T) {
	s := setupTestStore(t)
	p := seedPost(t, s, "Original", post.News, time.Now().Add(-time.Hour).UTC())
	_, err := s.IncrementLikes(p.ID)
	require.NoError(t, err)

	p.Title = "Revised"
	p.Content = "# New body"
	p.Category = post.Opinion
	p.Featured = true
	require.NoError(t, s.UpdatePost(&p))

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revised", got.Title)
	assert.Equal(t, post.Opinion, got.Category)
	assert.False(t, got.Featured, "flags are only written by the roster")
	assert.Contains(t, got.ContentHTML, "<h1>New body</h1>")
	assert.Equal(t, 1, got.Likes, "update must not reset counters")
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestUpdatePostKeepsRosterFlags(t *testing.T) {
	s := setupTestStore(t)
	p := seedPost(t, s, "Headliner", post.News, time.Now().UTC())
	require.NoError(t, s.SetFeaturedRoster([]string{p.ID}, []string{p.ID}))

	p.Title = "Headliner, revised"
	p.Featured = false
	p.SemiFeatured = false
	require.NoError(t, s.UpdatePost(&p))

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Headliner, revised", got.Title)
	assert.True(t, got.Featured)
	assert.True(t, got.SemiFeatured)
}

func TestUpdatePostValidationKeepsStoredRow(t *testing.T) {
	s := setupTestStore(t)
	p := seedPost(t, s, "Keep me", post.News, time.Now().UTC())

	p.Title = ""
	err := s.UpdatePost(&p)
	require.Error(t, err)
	assert.True(t, post.IsValidationError(err))

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep me", got.Title)
}

func TestUpdatePostNotFound(t *testing.T) {
	s := setupTestStore(t)
	p := post.Post{ID: "missing", Title: "T", Content: "x", Category: post.News}
	assert.ErrorIs(t, s.UpdatePost(&p), ErrNotFound)
}

func TestUpdatePostSwitchesImageKind(t *testing.T) {
	s := setupTestStore(t)
	p := post.Post{Title: "T", Content: "x", Category: post.News}
	p.SetInlineImage([]byte{1, 2, 3}, "image/png")
	require.NoError(t, s.CreatePost(&p))

	p.SetImageURL("https://example.com/cover.jpg")
	require.NoError(t, s.UpdatePost(&p))

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.False(t, got.HasInlineImage())
	assert.Equal(t, "https://example.com/cover.jpg", got.ImageSrc())
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	p := seedPost(t, s, "Doomed", post.News, time.Now().UTC())

	require.NoError(t, s.DeletePost(p.ID))
	_, err := s.GetPost(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(p.ID), ErrNotFound)
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetPost("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIncrementCounters(t *testing.T) {
	s := setupTestStore(t)
	p := seedPost(t, s, "Counted", post.News, time.Now().UTC())

	for want := 1; want <= 3; want++ {
		n, err := s.IncrementLikes(p.ID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := s.IncrementViews(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.IncrementLikes("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.IncrementViews("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncrementConcurrent(t *testing.T) {
	s := setupTestStore(t)
	p := seedPost(t, s, "Popular", post.News, time.Now().UTC())

	const workers, each = 8, 25
	var wg sync.WaitGroup
	errs := make(chan error, workers*each*2)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				if _, err := s.IncrementLikes(p.ID); err != nil {
					errs <- err
				}
				if _, err := s.IncrementViews(p.ID); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("increment: %v", err)
	}

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, workers*each, got.Likes)
	assert.Equal(t, workers*each, got.Views)
}

func TestSetFeaturedRoster(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UTC()
	a := seedPost(t, s, "A", post.News, now.Add(-3*time.Hour))
	b := seedPost(t, s, "B", post.Reviews, now.Add(-2*time.Hour))
	c := seedPost(t, s, "C", post.Opinion, now.Add(-1*time.Hour))

	require.NoError(t, s.SetFeaturedRoster([]string{a.ID, b.ID, c.ID}, []string{a.ID}))
	featured, err := s.ListFeatured(0)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(featured))
	semi, err := s.ListSemiFeatured(0)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(semi))

	require.NoError(t, s.SetFeaturedRoster([]string{b.ID}, nil))
	featured, err = s.ListFeatured(0)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(featured))
	semi, err = s.ListSemiFeatured(0)
	require.NoError(t, err)
	assert.Empty(t, semi)

	require.NoError(t, s.SetFeaturedRoster(nil, []string{}))
	featured, err = s.ListFeatured(0)
	require.NoError(t, err)
	assert.Empty(t, featured)
}

func TestSetFeaturedRosterIgnoresUnknownIDs(t *testing.T) {
	s := setupTestStore(t)
	a := seedPost(t, s, "A", post.News, time.Now().UTC())

	require.NoError(t, s.SetFeaturedRoster([]string{"ghost", a.ID, " "}, []string{"ghost"}))
	featured, err := s.ListFeatured(0)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(featured))
	semi, err := s.ListSemiFeatured(0)
	require.NoError(t, err)
	assert.Empty(t, semi)
}

func TestFrontPageRespectsLimits(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UTC()
	var all []string
	for i := 0; i < 4; i++ {
		p := seedPost(t, s, "Post", post.News, now.Add(time.Duration(i)*time.Minute))
		all = append(all, p.ID)
	}
	require.NoError(t, s.SetFeaturedRoster(all, all[:3]))

	fp, err := s.FrontPage(2, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{all[3], all[2]}, ids(fp.Featured))
	assert.Equal(t, []string{all[2], all[1], all[0]}, ids(fp.SemiFeatured))
}

func TestListPostsSortAndFilter(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UTC()
	oldest := seedPost(t, s, "Zelda review", post.Reviews, now.Add(-3*time.Hour))
	middle := seedPost(t, s, "Console news", post.News, now.Add(-2*time.Hour))
	newest := seedPost(t, s, "Indie opinion", post.Opinion, now.Add(-1*time.Hour))

	for i := 0; i < 3; i++ {
		_, err := s.IncrementLikes(middle.ID)
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		_, err := s.IncrementViews(oldest.ID)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter post.Filter
		limit  int
		want   []string
	}{
		{"newest", post.Filter{}, 0, []string{newest.ID, middle.ID, oldest.ID}},
		{"oldest", post.Filter{Sort: post.SortOldest}, 0, []string{oldest.ID, middle.ID, newest.ID}},
		{"most liked", post.Filter{Sort: post.SortMostLiked}, 0, []string{middle.ID, newest.ID, oldest.ID}},
		{"most viewed", post.Filter{Sort: post.SortMostViewed}, 0, []string{oldest.ID, newest.ID, middle.ID}},
		{"limit", post.Filter{}, 2, []string{newest.ID, middle.ID}},
		{"category", post.Filter{Category: post.News}, 0, []string{middle.ID}},
		{"search case-insensitive", post.Filter{Search: "ZELDA"}, 0, []string{oldest.ID}},
		{"search title only", post.Filter{Search: "body of"}, 0, nil},
		{"search content", post.Filter{Search: "body of console", SearchContent: true}, 0, []string{middle.ID}},
		{"search and category", post.Filter{Search: "review", Category: post.News}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListPosts(tt.filter, tt.limit)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestListByCategory(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UTC()
	r1 := seedPost(t, s, "R1", post.Reviews, now.Add(-2*time.Minute))
	seedPost(t, s, "N1", post.News, now.Add(-time.Minute))
	r2 := seedPost(t, s, "R2", post.Reviews, now)

	got, err := s.ListByCategory(post.Reviews, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{r2.ID, r1.ID}, ids(got))
}

func TestListForRosterPutsCuratedFirst(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UTC()
	plain := seedPost(t, s, "Plain", post.News, now)
	semi := seedPost(t, s, "Semi", post.News, now.Add(-time.Hour))
	feat := seedPost(t, s, "Feat", post.News, now.Add(-2*time.Hour))
	require.NoError(t, s.SetFeaturedRoster([]string{feat.ID}, []string{semi.ID}))

	got, err := s.ListForRoster()
	require.NoError(t, err)
	assert.Equal(t, []string{feat.ID, semi.ID, plain.ID}, ids(got))
}

func TestReplaceAllPosts(t *testing.T) {
	s := setupTestStore(t)
	old := seedPost(t, s, "Old", post.News, time.Now().UTC())

	fresh := []post.Post{
		{Title: "One", Content: "1", Category: post.News, Featured: true, Likes: 4},
		{Title: "Two", Content: "2", Category: post.Reviews, SemiFeatured: true},
	}
	require.NoError(t, s.ReplaceAllPosts(fresh))

	_, err := s.GetPost(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	all, err := s.ListPosts(post.Filter{}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fp, err := s.FrontPage(5, 5)
	require.NoError(t, err)
	require.Len(t, fp.Featured, 1)
	assert.Equal(t, "One", fp.Featured[0].Title)
	assert.Equal(t, 4, fp.Featured[0].Likes)
	require.Len(t, fp.SemiFeatured, 1)
	assert.Equal(t, "Two", fp.SemiFeatured[0].Title)
}

func TestReplaceAllPostsRollsBackOnInvalidPost(t *testing.T) {
	s := setupTestStore(t)
	old := seedPost(t, s, "Survivor", post.News, time.Now().UTC())

	err := s.ReplaceAllPosts([]post.Post{
		{Title: "Fine", Content: "x", Category: post.News},
		{Title: "", Content: "x", Category: post.News},
	})
	require.Error(t, err)

	got, err := s.GetPost(old.ID)
	require.NoError(t, err)
	assert.Equal(t, "Survivor", got.Title)
	all, err := s.ListPosts(post.Filter{}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
