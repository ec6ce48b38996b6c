// Package main provides a tool to seed the database with demo reading data.
//
// This creates a handful of users, a small book catalogue, and realistic
// shelf placements, reviews, follows, and goals to exercise the feed,
// stats, and community features against a populated database.
//
// Usage:
//
//	DATA_PATH=~/ReadLoop/data go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/readloopapp/readloop-server/internal/auth"
	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/id"
	"github.com/readloopapp/readloop-server/internal/service"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

const seedPassword = "ReadLoopDemo123!"

type seedUser struct {
	Username    string
	DisplayName string
	IsAdmin     bool
}

var seedUsers = []seedUser{
	{Username: "alice", DisplayName: "Alice Winters", IsAdmin: true},
	{Username: "ben", DisplayName: "Ben Okafor"},
	{Username: "carmen", DisplayName: "Carmen Diaz"},
	{Username: "dara", DisplayName: "Dara Lindqvist"},
}

type seedBook struct {
	Title       string
	Authors     []string
	Genres      []string
	PublishYear string
	PageCount   int
}

var seedBooks = []seedBook{
	{Title: "The Dispossessed", Authors: []string{"Ursula K. Le Guin"}, Genres: []string{"science fiction"}, PublishYear: "1974", PageCount: 341},
	{Title: "Piranesi", Authors: []string{"Susanna Clarke"}, Genres: []string{"fantasy"}, PublishYear: "2020", PageCount: 245},
	{Title: "The Remains of the Day", Authors: []string{"Kazuo Ishiguro"}, Genres: []string{"literary fiction"}, PublishYear: "1989", PageCount: 258},
	{Title: "A Memory Called Empire", Authors: []string{"Arkady Martine"}, Genres: []string{"science fiction"}, PublishYear: "2019", PageCount: 462},
	{Title: "Braiding Sweetgrass", Authors: []string{"Robin Wall Kimmerer"}, Genres: []string{"nonfiction", "nature"}, PublishYear: "2013", PageCount: 391},
	{Title: "The Fifth Season", Authors: []string{"N.K. Jemisin"}, Genres: []string{"fantasy"}, PublishYear: "2015", PageCount: 468},
	{Title: "Convenience Store Woman", Authors: []string{"Sayaka Murata"}, Genres: []string{"literary fiction"}, PublishYear: "2016", PageCount: 163},
	{Title: "Project Hail Mary", Authors: []string{"Andy Weir"}, Genres: []string{"science fiction"}, PublishYear: "2021", PageCount: 476},
}

var reviewBodies = []string{
	"Couldn't put it down.",
	"Slow to start, but the back half earns it.",
	"A new favorite. I'll be thinking about this one for a while.",
	"Solid, though I wanted more from the ending.",
	"",
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dataPath = filepath.Join(home, "ReadLoop", "data")
	}

	dbPath := filepath.Join(dataPath, "readloop.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := store.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Services publish SSE events unconditionally, so run a real manager
	// even though nothing is listening.
	sseManager := sse.NewManager(logger)
	go sseManager.Start(ctx)
	s.SetEventEmitter(sseManager)

	shelfService := service.NewShelfService(s, sseManager, logger)
	reviewService := service.NewReviewService(s, sseManager, logger)
	socialService := service.NewSocialService(s, sseManager, logger)
	goalService := service.NewGoalService(s, sseManager, logger)
	activityService := service.NewActivityService(s, logger)

	shelfService.SetActivityRecorder(activityService)
	shelfService.SetGoalChecker(goalService)
	reviewService.SetActivityRecorder(activityService)
	socialService.SetActivityRecorder(activityService)
	goalService.SetActivityRecorder(activityService)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := createUsers(ctx, s)
	books := createBooks(ctx, s)

	if len(users) == 0 || len(books) == 0 {
		log.Fatal("Nothing to seed")
	}

	// Everyone follows alice; the rest of the graph is random
	for _, u := range users[1:] {
		mustFollow(ctx, socialService, u.ID, users[0].ID)
	}
	for _, u := range users {
		other := users[rng.Intn(len(users))]
		if other.ID != u.ID {
			mustFollow(ctx, socialService, u.ID, other.ID)
		}
	}

	year := time.Now().Year()

	for _, u := range users {
		fmt.Printf("\nSeeding reading data for %s\n", u.Username)

		if _, err := goalService.SetGoal(ctx, u.ID, year, 6+rng.Intn(20)); err != nil {
			log.Printf("  set goal: %v", err)
		}

		// Shuffle the catalogue and spread it across the three shelves
		shuffled := make([]*domain.Book, len(books))
		copy(shuffled, books)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		numRead := 2 + rng.Intn(3)
		numReading := 1
		numWanted := 2

		pos := 0
		for n := 0; n < numRead && pos < len(shuffled); n++ {
			book := shuffled[pos]
			pos++
			// Pass through currently_reading first so both timestamps get stamped
			if _, err := shelfService.SetShelf(ctx, u.ID, book.ID, domain.ShelfCurrentlyReading); err != nil {
				log.Printf("  shelve %q: %v", book.Title, err)
				continue
			}
			if _, err := shelfService.SetShelf(ctx, u.ID, book.ID, domain.ShelfRead); err != nil {
				log.Printf("  finish %q: %v", book.Title, err)
				continue
			}

			rating := 3 + rng.Intn(3)
			body := reviewBodies[rng.Intn(len(reviewBodies))]
			if _, err := reviewService.UpsertReview(ctx, u.ID, book.ID, rating, body, false); err != nil {
				log.Printf("  review %q: %v", book.Title, err)
			}
		}

		for n := 0; n < numReading && pos < len(shuffled); n++ {
			book := shuffled[pos]
			pos++
			if _, err := shelfService.SetShelf(ctx, u.ID, book.ID, domain.ShelfCurrentlyReading); err != nil {
				log.Printf("  shelve %q: %v", book.Title, err)
			}
		}

		for n := 0; n < numWanted && pos < len(shuffled); n++ {
			book := shuffled[pos]
			pos++
			if _, err := shelfService.SetShelf(ctx, u.ID, book.ID, domain.ShelfWantToRead); err != nil {
				log.Printf("  shelve %q: %v", book.Title, err)
			}
		}
	}

	fmt.Printf("\nSeeded %d users and %d books. All users share the password %q.\n",
		len(users), len(books), seedPassword)
}

// createUsers inserts the demo users, skipping any that already exist.
func createUsers(ctx context.Context, s *store.Store) []*domain.User {
	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	var users []*domain.User
	for _, su := range seedUsers {
		userID, err := id.Generate("user")
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		u := &domain.User{
			Entity:       domain.Entity{ID: userID},
			Email:        su.Username + "@readloop.demo",
			Username:     su.Username,
			PasswordHash: hash,
			IsAdmin:      su.IsAdmin,
			DisplayName:  su.DisplayName,
			LastLoginAt:  time.Now(),
		}
		u.InitTimestamps()

		if err := s.CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				existing, getErr := s.GetUserByEmail(ctx, u.Email)
				if getErr != nil {
					log.Fatalf("User %s exists but lookup failed: %v", su.Username, getErr)
				}
				fmt.Printf("User %s already exists, reusing\n", su.Username)
				users = append(users, existing)
				continue
			}
			log.Fatalf("Failed to create user %s: %v", su.Username, err)
		}

		fmt.Printf("Created user %s (%s)\n", su.Username, userID)
		users = append(users, u)
	}
	return users
}

// createBooks inserts the demo catalogue, skipping titles already present.
func createBooks(ctx context.Context, s *store.Store) []*domain.Book {
	existing, err := s.ListBooks(ctx, store.BookListOptions{Limit: 500})
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}
	byTitle := make(map[string]*domain.Book, len(existing))
	for _, b := range existing {
		byTitle[b.Title] = b
	}

	var books []*domain.Book
	for _, sb := range seedBooks {
		if b, ok := byTitle[sb.Title]; ok {
			fmt.Printf("Book %q already exists, reusing\n", sb.Title)
			books = append(books, b)
			continue
		}

		bookID, err := id.Generate("book")
		if err != nil {
			log.Fatalf("Failed to generate book ID: %v", err)
		}

		b := &domain.Book{
			Entity:      domain.Entity{ID: bookID},
			Title:       sb.Title,
			Authors:     sb.Authors,
			Genres:      sb.Genres,
			PublishYear: sb.PublishYear,
			PageCount:   sb.PageCount,
		}
		b.InitTimestamps()

		if err := s.CreateBook(ctx, b); err != nil {
			log.Fatalf("Failed to create book %q: %v", sb.Title, err)
		}

		fmt.Printf("Created book %q (%s)\n", sb.Title, bookID)
		books = append(books, b)
	}
	return books
}

func mustFollow(ctx context.Context, social *service.SocialService, followerID, followeeID string) {
	if err := social.Follow(ctx, followerID, followeeID); err != nil {
		log.Printf("follow %s -> %s: %v", followerID, followeeID, err)
	}
}
