package seed

import (
	"context"
	"fmt"
	"log"

	"racommunity/internal/models"
	"racommunity/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	Factory     FactoryOptions
}

// Result reports what a seeding run created.
type Result struct {
	Users []*models.User
	Posts []*models.Post
}

// Seed populates the database with users and posts spread across every board.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	if opts.NumUsers <= 0 && opts.NumPosts > 0 {
		return nil, fmt.Errorf("cannot seed %d posts without users", opts.NumPosts)
	}
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.Factory.DryRun {
		if err := ClearData(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(repository.NewUserRepository(db), repository.NewPostRepository(db), opts.Factory)
	res := &Result{}

	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		res.Users = append(res.Users, u)
	}
	log.Printf("%d users created", len(res.Users))

	for i := 0; i < opts.NumPosts; i++ {
		author := res.Users[i%len(res.Users)]
		p, err := f.CreatePost(ctx, author)
		if err != nil {
			return nil, fmt.Errorf("failed to create posts: %w", err)
		}
		res.Posts = append(res.Posts, p)
	}
	log.Printf("%d posts created", len(res.Posts))

	return res, nil
}

// ClearData removes all posts and then all users.
func ClearData(ctx context.Context, db *gorm.DB) error {
	log.Println("Clearing existing data...")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return all.Delete(&models.User{}).Error
	})
}
