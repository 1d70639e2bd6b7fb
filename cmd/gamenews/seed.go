package main

import (
	"fmt"
	"time"

	"github.com/eringen/gamenews"
	"github.com/eringen/gamenews/post"
)

// samplePosts is the starter content written by the seed command.
func samplePosts(now time.Time) []post.Post {
	day := 24 * time.Hour
	return []post.Post{
		{
			Title:    "Shadow of the Erdtree: everything announced so far",
			Category: post.News,
			Author:   "News Desk",
			ImageURL: "https://images.unsplash.com/photo-1542751371-adc38448a05e?w=1200&h=600&fit=crop",
			Featured: true,
			Likes:    42,
			Views:    156,
			Content: "The expansion takes players **beyond the Erdtree** into a region the base game only hinted at.\n\n" +
				"## What we know\n\n" +
				"- New weapon types and spells\n- A fresh set of optional bosses\n- More of Miquella's story\n\n" +
				"> Expect a difficulty curve that assumes you finished the base game.",
			CreatedAt: now.Add(-1 * day),
		},
		{
			Title:        "Tears of the Kingdom review: a sequel that reinvents its sandbox",
			Category:     post.Reviews,
			Author:       "Review Team",
			ImageURL:     "https://images.unsplash.com/photo-1511512578047-dfb367046420?w=1200&h=600&fit=crop",
			Featured:     true,
			SemiFeatured: true,
			Likes:        38,
			Views:        203,
			Content: "Ultrahand turns every field into a workshop. Bridges, carts and *ridiculous* flying machines are " +
				"all a few glued logs away.\n\n" +
				"### Verdict\n\n" +
				"1. Story: stronger than its predecessor\n2. World: denser, with sky and depths layers\n3. Performance: occasional dips\n\n" +
				"***\n\n" +
				"A must-play for anyone who enjoyed *Breath of the Wild*.",
			CreatedAt: now.Add(-2 * day),
		},
		{
			Title:        "Indie studios are where the risks get taken",
			Category:     post.Opinion,
			Author:       "Industry Analyst",
			ImageURL:     "https://images.unsplash.com/photo-1556438064-2d7646166914?w=1200&h=600&fit=crop",
			SemiFeatured: true,
			Likes:        29,
			Views:        187,
			Content: "Big budgets buy polish; small teams buy freedom. Games like *Celeste*, *Hollow Knight* and " +
				"*Hades* proved that a focused idea beats a feature checklist.\n\n" +
				"Cheaper tools and open storefronts mean more of these ideas ship. That is good news for everyone, " +
				"including the big studios that will borrow them.",
			CreatedAt: now.Add(-3 * day),
		},
		{
			Title:        "PS5 Pro: what the leaked specs suggest",
			Category:     post.News,
			Author:       "Tech Reporter",
			ImageURL:     "https://images.unsplash.com/photo-1606144042614-b2417e99c4e3?w=1200&h=600&fit=crop",
			SemiFeatured: true,
			Likes:        35,
			Views:        142,
			Content: "Sony has not confirmed anything, but the rumours are consistent:\n\n" +
				"- Higher CPU clocks\n- A GPU with stronger ray tracing\n- More memory bandwidth\n\n" +
				"The timing would match the PS4 Pro, which arrived three years after the original console. " +
				"Read the [PS4 Pro history](https://en.wikipedia.org/wiki/PlayStation_4#PlayStation_4_Pro) for context.",
			CreatedAt: now.Add(-4 * day),
		},
		{
			Title:    "Baldur's Gate 3 review: the new bar for RPGs",
			Category: post.Reviews,
			Author:   "RPG Specialist",
			ImageURL: "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=1200&h=600&fit=crop",
			Featured: true,
			Likes:    51,
			Views:    278,
			Content: "Every conversation can branch and every fight rewards positioning. Larian built a game that " +
				"**respects player choice** at a scale few studios attempt.\n\n" +
				"```\nPlatforms: PC, PS5, Xbox Series X|S\nPlaytime: 75-120 hours\n```\n\n" +
				"The writing and voice acting carry a story that is epic in scope and personal in execution.",
			CreatedAt: now.Add(-5 * day),
		},
	}
}

func runSeed() error {
	store, err := gamenews.NewStore(configFromEnv().DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	posts := samplePosts(time.Now().UTC())
	if err := store.ReplaceAllPosts(posts); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Printf("Inserted %d sample posts\n", len(posts))
	return nil
}
