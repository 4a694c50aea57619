package seed

import (
	"fmt"
	"log"

	"navega/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Config sizes a demo data run.
type Config struct {
	NumUsers    int
	NumResults  int
	NumPosts    int
	ShouldClean bool
	Options
}

// Summary reports what a Seed run created.
type Summary struct {
	Users      int
	Results    int
	Posts      int
	Comments   int
	Identifies int
}

// seededTables lists the tables Seed writes, children first.
var seededTables = []string{"comment_identifies", "post_identifies", "comments", "posts", "test_results", "users"}

// Seed populates the database with demo data: accounts, quiz results and a
// forum with comments and identifies. Counters are kept consistent with the
// identify rows.
func Seed(db *gorm.DB, cfg Config) (*Summary, error) {
	log.Printf("seeding %d users, %d results and %d posts", cfg.NumUsers, cfg.NumResults, cfg.NumPosts)

	if cfg.ShouldClean && !cfg.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db, cfg.Options)
	sum := &Summary{}

	users := make([]*models.User, 0, cfg.NumUsers)
	for i := 0; i < cfg.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	results := make([]*models.Result, 0, cfg.NumResults)
	for i := 0; i < cfg.NumResults; i++ {
		results = append(results, f.BuildResult(f.maybeUser(users)))
	}
	if err := f.CreateResultsBatch(results); err != nil {
		return nil, fmt.Errorf("create results: %w", err)
	}
	sum.Results = len(results)

	for i := 0; i < cfg.NumPosts; i++ {
		post, err := f.CreatePost(f.maybeUser(users))
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		n, err := f.identifyBy(users, func(who models.Identity) error { return f.IdentifyPost(post, who) })
		if err != nil {
			return nil, fmt.Errorf("identify post %d: %w", post.ID, err)
		}
		sum.Identifies += n

		for c := f.rng.Intn(4); c > 0; c-- {
			comment, err := f.CreateComment(f.maybeUser(users), post)
			if err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
			n, err := f.identifyBy(users, func(who models.Identity) error { return f.IdentifyComment(comment, who) })
			if err != nil {
				return nil, fmt.Errorf("identify comment %d: %w", comment.ID, err)
			}
			sum.Identifies += n
		}
	}

	log.Printf("seeding completed: %+v", *sum)
	return sum, nil
}

// maybeUser returns a random account about half of the time and nil
// otherwise, so fixtures mix registered and anonymous authors.
func (f *Factory) maybeUser(users []*models.User) *models.User {
	if len(users) == 0 || f.rng.Intn(2) == 0 {
		return nil
	}
	return users[f.rng.Intn(len(users))]
}

// identifyBy applies up to three identifies from distinct identities.
func (f *Factory) identifyBy(users []*models.User, apply func(models.Identity) error) (int, error) {
	n := f.rng.Intn(4)
	perm := f.rng.Perm(len(users))
	for i := 0; i < n; i++ {
		var who models.Identity = models.Anonymous{DeviceID: gofakeit.UUID()}
		if i < len(perm) && f.rng.Intn(2) == 0 {
			who = models.Registered{UserID: users[perm[i]].ID}
		}
		if err := apply(who); err != nil {
			return i, err
		}
	}
	return n, nil
}

func clearData(db *gorm.DB) error {
	log.Println("clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comment_identifies, post_identifies, comments, posts, test_results, users RESTART IDENTITY CASCADE`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range seededTables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
