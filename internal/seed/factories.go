// Package seed creates demo data for local development. It is not used by the
// running service.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"racommunity/internal/models"
	"racommunity/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext password of every seeded user.
const DefaultPassword = "password123"

// FactoryOptions tune generated data.
type FactoryOptions struct {
	// Seed makes output reproducible. Zero picks a time-based seed.
	Seed int64
	// MaxDays bounds how far back created_at is spread.
	MaxDays int
	// SkipBcrypt stores the plaintext password. Faster for large local runs.
	SkipBcrypt bool
	// DryRun builds entities with synthetic IDs and writes nothing.
	DryRun bool
}

// Factory builds users and posts and persists them through the repositories.
type Factory struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	faker  *gofakeit.Faker
	opts   FactoryOptions
	now    func() time.Time
	nextID uint
}

// NewFactory creates a Factory writing through the given repositories.
func NewFactory(users repository.UserRepository, posts repository.PostRepository, opts FactoryOptions) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		users:  users,
		posts:  posts,
		faker:  gofakeit.New(seed),
		opts:   opts,
		now:    time.Now,
		nextID: 1000,
	}
}

// CreateUser persists a generated user. Overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999)),
		Email:     f.faker.Email(),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = DefaultPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by author on a random board with random
// counters and a created_at spread over the last MaxDays.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	created := f.now().UTC().
		Add(-time.Duration(f.faker.Number(0, f.opts.MaxDays-1)) * 24 * time.Hour).
		Add(-time.Duration(f.faker.Number(0, 23)) * time.Hour).
		Add(-time.Duration(f.faker.Number(0, 59)) * time.Minute)

	post := &models.Post{
		Title:     f.faker.Sentence(5),
		Content:   f.faker.Paragraph(1, 3, 12, "\n"),
		Category:  models.Categories[f.faker.Number(0, len(models.Categories)-1)],
		UserID:    author.ID,
		Views:     int64(f.faker.Number(0, 2500)),
		Likes:     int64(f.faker.Number(0, 250)),
		CreatedAt: created,
		UpdatedAt: created,
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post for author.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		return post, nil
	}

	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
