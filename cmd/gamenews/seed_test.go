package main

import (
	"testing"
	"time"

	"github.com/eringen/gamenews/post"
)

func TestSamplePostsAreValid(t *testing.T) {
	posts := samplePosts(time.Now())
	if len(posts) == 0 {
		t.Fatal("expected sample posts")
	}
	seen := map[post.Category]bool{}
	featured := 0
	for i := range posts {
		if err := post.Validate(&posts[i]); err != nil {
			t.Errorf("sample %q: %v", posts[i].Title, err)
		}
		seen[posts[i].Category] = true
		if posts[i].Featured {
			featured++
		}
	}
	for _, c := range post.Categories {
		if !seen[c] {
			t.Errorf("no sample post in %s", c)
		}
	}
	if featured == 0 {
		t.Error("expected at least one featured sample")
	}
}

func TestRunSeed(t *testing.T) {
	t.Setenv("DATABASE_PATH", t.TempDir()+"/seed.db")
	if err := runSeed(); err != nil {
		t.Fatalf("runSeed() = %v", err)
	}
	if err := runSeed(); err != nil {
		t.Fatalf("second runSeed() = %v", err)
	}
}
