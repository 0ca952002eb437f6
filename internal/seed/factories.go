// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"fakex/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubjectPrefix marks identity subjects that belong to seeded users.
const SubjectPrefix = "seed|"

const maxContentRunes = 280

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	opts  Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to db. A zero opts.RandSeed uses the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed), opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a user with a fresh seed subject.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		ExternalID: SubjectPrefix + uuid.NewString(),
		Name:       f.faker.Name(),
		Email:      f.faker.Email(),
		Picture:    fmt.Sprintf("https://picsum.photos/seed/%s/150.jpg", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a post by author, backdated within MaxDays.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content:   truncateRunes(f.faker.Sentence(f.faker.Number(6, 30)), maxContentRunes),
		AuthorID:  author.ID,
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		return post, nil
	}
	if err := f.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a comment by author on post.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   truncateRunes(f.faker.Sentence(f.faker.Number(3, 15)), maxContentRunes),
		AuthorID:  author.ID,
		PostID:    post.ID,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 180)) * time.Minute),
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.WithContext(ctx).Omit("Author", "Post").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post. It reports false when the
// pair already exists; the unique index keeps one like per pair.
func (f *Factory) CreateLike(ctx context.Context, user *models.User, post *models.Post) (bool, error) {
	if f.opts.DryRun {
		return true, nil
	}
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	result := f.db.WithContext(ctx).
		Omit("Post", "User").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
