// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"navega/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "navegante123"

var (
	ageRanges   = []string{"12-17", "18-24", "25-34", "35-44", "45+"}
	genders     = []string{"femenino", "masculino", "no binario", "prefiero no decirlo"}
	quizRoles   = []string{"estudiante", "docente", "padre/madre", "profesional"}
	screenTimes = []string{"menos de 2 horas", "2-4 horas", "4-6 horas", "más de 6 horas"}
	nicknames   = []string{"Capitana", "Grumete", "Marinero", "Faro", "Brújula", "Ancla", "Gaviota", "Timonel"}
	forumLines  = []string{
		"Hoy dejé el móvil en otra habitación durante la cena.",
		"Llevo una semana sin redes después de las diez de la noche.",
		"Me cuesta mucho no mirar el teléfono al despertar.",
		"Desinstalé dos apps y ya noto la diferencia.",
		"¿Alguien tiene trucos para no hacer scroll infinito?",
		"Activé la escala de grises y el móvil me parece aburrido.",
		"Mis hijos y yo tenemos una caja para los móviles los domingos.",
		"Volví a leer libros en papel antes de dormir.",
	}
)

// Options tune how the Factory builds fixtures.
type Options struct {
	// DryRun assigns synthetic IDs instead of writing to the database.
	DryRun bool
	// SkipBcrypt stores the plain demo password; only for local fixtures.
	SkipBcrypt bool
	// MaxDays spreads created_at over the last MaxDays days (default 90).
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	now := time.Now().UnixNano()
	gofakeit.Seed(now)
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(now)), nextID: 1000}
}

func (f *Factory) pick(items []string) string {
	return items[f.rng.Intn(len(items))]
}

// pastTime returns a random instant within the configured window.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(value any, id *uint, what string) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] %s: id=%d (no DB write)", what, *id)
		return nil
	}
	return f.db.Create(value).Error
}

// CategoryForScore maps a quiz score onto its traffic-light category.
func CategoryForScore(score int) models.ResultCategory {
	switch {
	case score < 15:
		return models.CategoryVerde
	case score < 25:
		return models.CategoryAmarillo
	default:
		return models.CategoryRojo
	}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	user := &models.User{
		Name:  first + " " + gofakeit.LastName(),
		Email: fmt.Sprintf("%s.%d@example.com", strings.ToLower(first), gofakeit.Number(1000, 9999)),
		Role:  models.RoleUser,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = DemoPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}
	if err := f.persist(user, &user.ID, "CreateUser"); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildResult constructs a quiz result without persisting it. The category
// is derived from the score unless an override changes it.
func (f *Factory) BuildResult(owner *models.User, overrides ...func(*models.Result)) *models.Result {
	score := f.rng.Intn(36)
	result := &models.Result{
		AgeRange:       f.pick(ageRanges),
		Gender:         f.pick(genders),
		UserRole:       f.pick(quizRoles),
		ScreenTime:     f.pick(screenTimes),
		FinalScore:     score,
		ResultCategory: CategoryForScore(score),
		CreatedAt:      f.pastTime(),
	}
	if owner != nil {
		id := owner.ID
		result.UserID = &id
	} else {
		device := gofakeit.UUID()
		result.DeviceID = &device
	}
	for _, override := range overrides {
		override(result)
	}
	return result
}

// CreateResultsBatch persists multiple results in a single DB call.
func (f *Factory) CreateResultsBatch(results []*models.Result) error {
	if len(results) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, r := range results {
			f.nextID++
			r.ID = f.nextID
		}
		log.Printf("[dry-run] CreateResultsBatch: %d results (no DB write)", len(results))
		return nil
	}
	return f.db.CreateInBatches(results, 200).Error
}

// author returns the authorship of a fixture: the user when given, else a
// fresh anonymous device with a nickname.
func (f *Factory) author(user *models.User) models.Author {
	if user != nil {
		return models.NewAuthor(models.Registered{UserID: user.ID}, "")
	}
	return models.NewAuthor(models.Anonymous{DeviceID: gofakeit.UUID()}, f.pick(nicknames))
}

// CreatePost constructs and persists a forum post. A nil user makes it an
// anonymous post.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Message:   f.pick(forumLines),
		Author:    f.author(user),
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.persist(post, &post.ID, "CreatePost"); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a comment on post. A nil user makes
// it anonymous.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		Message: gofakeit.Sentence(8),
		Author:  f.author(user),
	}
	if !post.CreatedAt.IsZero() {
		comment.CreatedAt = post.CreatedAt.Add(time.Duration(f.rng.Intn(48)+1) * time.Hour)
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.persist(comment, &comment.ID, "CreateComment"); err != nil {
		return nil, err
	}
	return comment, nil
}

// IdentifyPost records an identify on post by who and refreshes its counter.
// Repeated identities are ignored.
func (f *Factory) IdentifyPost(post *models.Post, who models.Identity) error {
	row := &models.PostIdentify{PostID: post.ID}
	setIdentity(who, &row.UserID, &row.DeviceID)
	if f.opts.DryRun {
		post.IdentifiesCount++
		return nil
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.PostIdentify{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		post.IdentifiesCount = int(count)
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).Update("identifies_count", count).Error
	})
}

// IdentifyComment is the comment counterpart of IdentifyPost.
func (f *Factory) IdentifyComment(comment *models.Comment, who models.Identity) error {
	row := &models.CommentIdentify{CommentID: comment.ID}
	setIdentity(who, &row.UserID, &row.DeviceID)
	if f.opts.DryRun {
		comment.IdentifiesCount++
		return nil
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.CommentIdentify{}).Where("comment_id = ?", comment.ID).Count(&count).Error; err != nil {
			return err
		}
		comment.IdentifiesCount = int(count)
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).Update("identifies_count", count).Error
	})
}

func setIdentity(who models.Identity, userID **uint, deviceID **string) {
	switch id := who.(type) {
	case models.Registered:
		uid := id.UserID
		*userID = &uid
	case models.Anonymous:
		device := id.DeviceID
		*deviceID = &device
	}
}
