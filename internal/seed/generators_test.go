package seed

import (
	"testing"
	"time"

	"navega/internal/models"
)

func TestBuildResult_CategoryAndWindow(t *testing.T) {
	opts := Options{DryRun: true, MaxDays: 30}
	f := NewFactory(nil, opts)

	for i := 0; i < 50; i++ {
		r := f.BuildResult(nil)
		if r.DeviceID == nil || r.UserID != nil {
			t.Fatalf("anonymous result must carry only a device id: %+v", r)
		}
		if r.ResultCategory != CategoryForScore(r.FinalScore) {
			t.Fatalf("score %d mapped to %s", r.FinalScore, r.ResultCategory)
		}
		if !r.ResultCategory.Valid() {
			t.Fatalf("invalid category %q", r.ResultCategory)
		}
		if time.Since(r.CreatedAt) > (time.Duration(opts.MaxDays)+1)*24*time.Hour {
			t.Fatalf("created_at too old: %v", r.CreatedAt)
		}
	}

	owner := &models.User{ID: 7}
	r := f.BuildResult(owner, func(r *models.Result) { r.UserRole = "docente" })
	if r.UserID == nil || *r.UserID != 7 || r.DeviceID != nil {
		t.Fatalf("owned result must carry only the user id: %+v", r)
	}
	if r.UserRole != "docente" {
		t.Fatalf("override not applied: %s", r.UserRole)
	}
}

func TestCategoryForScore(t *testing.T) {
	tests := map[int]models.ResultCategory{
		0:  models.CategoryVerde,
		14: models.CategoryVerde,
		15: models.CategoryAmarillo,
		24: models.CategoryAmarillo,
		25: models.CategoryRojo,
		35: models.CategoryRojo,
	}
	for score, want := range tests {
		if got := CategoryForScore(score); got != want {
			t.Fatalf("score %d: expected %s, got %s", score, want, got)
		}
	}
}

func TestDryRun_AssignsSyntheticIDs(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true})

	u, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := f.CreatePost(nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if u.ID == 0 || p.ID == 0 || u.ID == p.ID {
		t.Fatalf("expected distinct synthetic ids, got user=%d post=%d", u.ID, p.ID)
	}
	if p.DeviceID == nil || p.AnonymousNickname == nil {
		t.Fatalf("anonymous post must carry a device id and nickname")
	}
	if err := f.IdentifyPost(p, models.Registered{UserID: u.ID}); err != nil {
		t.Fatalf("identify: %v", err)
	}
	if p.IdentifiesCount != 1 {
		t.Fatalf("expected count 1, got %d", p.IdentifiesCount)
	}
}
