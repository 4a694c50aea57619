package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"navega/internal/models"
	"navega/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

type recordedEvent struct {
	Event   string
	Payload any
}

// recordingBroadcaster captures fan-out events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) Broadcast(event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Event: event, Payload: payload})
}

func (b *recordingBroadcaster) Events() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedEvent(nil), b.events...)
}

// memReactions is an in-memory ReactionStore keyed by identity.
type memReactions struct {
	mu   sync.Mutex
	rows map[uint]map[string]bool
}

func newMemReactions() *memReactions {
	return &memReactions{rows: make(map[uint]map[string]bool)}
}

func (m *memReactions) HasReacted(_ context.Context, targetID uint, who models.Identity) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[targetID][who.String()], nil
}

func (m *memReactions) AddReaction(_ context.Context, targetID uint, who models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[targetID] == nil {
		m.rows[targetID] = make(map[string]bool)
	}
	if m.rows[targetID][who.String()] {
		return models.NewConflictError("duplicate")
	}
	m.rows[targetID][who.String()] = true
	return nil
}

func (m *memReactions) RemoveReaction(_ context.Context, targetID uint, who models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows[targetID], who.String())
	return nil
}

func (m *memReactions) CountReactions(_ context.Context, targetID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows[targetID])), nil
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	getForUpdateFn func(context.Context, uint) (*models.Post, error)
	existsFn       func(context.Context, uint) (bool, error)
	listFn         func(context.Context, repository.Page) ([]models.Post, error)
	updateCountFn  func(context.Context, *models.Post, int) error
	softDeleteFn   func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetForUpdate(ctx context.Context, id uint) (*models.Post, error) {
	return s.getForUpdateFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, page repository.Page) ([]models.Post, error) {
	return s.listFn(ctx, page)
}
func (s *postRepoStub) UpdateIdentifiesCount(ctx context.Context, post *models.Post, count int) error {
	return s.updateCountFn(ctx, post, count)
}
func (s *postRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}

// memPostRepo returns a stub whose posts live in the given map.
func memPostRepo(posts map[uint]*models.Post) *postRepoStub {
	var mu sync.Mutex
	lookup := func(_ context.Context, id uint) (*models.Post, error) {
		mu.Lock()
		defer mu.Unlock()
		p, ok := posts[id]
		if !ok {
			return nil, models.NewNotFoundError("Post", id)
		}
		cp := *p
		return &cp, nil
	}
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			mu.Lock()
			defer mu.Unlock()
			p.ID = uint(len(posts) + 1)
			cp := *p
			posts[p.ID] = &cp
			return nil
		},
		getByIDFn:      lookup,
		getForUpdateFn: lookup,
		existsFn: func(_ context.Context, id uint) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			_, ok := posts[id]
			return ok, nil
		},
		listFn: func(_ context.Context, _ repository.Page) ([]models.Post, error) { return nil, nil },
		updateCountFn: func(_ context.Context, p *models.Post, count int) error {
			mu.Lock()
			defer mu.Unlock()
			p.IdentifiesCount = count
			posts[p.ID].IdentifiesCount = count
			return nil
		},
		softDeleteFn: func(_ context.Context, id uint) error {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := posts[id]; !ok {
				return models.NewNotFoundError("Post", id)
			}
			delete(posts, id)
			return nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint, uint) (*models.Comment, error)
	getForUpdateFn func(context.Context, uint, uint) (*models.Comment, error)
	updateCountFn  func(context.Context, *models.Comment, int) error
	softDeleteFn   func(context.Context, uint, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, postID, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, postID, id)
}
func (s *commentRepoStub) GetForUpdate(ctx context.Context, postID, id uint) (*models.Comment, error) {
	return s.getForUpdateFn(ctx, postID, id)
}
func (s *commentRepoStub) UpdateIdentifiesCount(ctx context.Context, comment *models.Comment, count int) error {
	return s.updateCountFn(ctx, comment, count)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, postID, id uint) error {
	return s.softDeleteFn(ctx, postID, id)
}

func memCommentRepo(comments map[uint]*models.Comment) *commentRepoStub {
	var mu sync.Mutex
	lookup := func(_ context.Context, postID, id uint) (*models.Comment, error) {
		mu.Lock()
		defer mu.Unlock()
		c, ok := comments[id]
		if !ok || c.PostID != postID {
			return nil, models.NewNotFoundError("Comment", id)
		}
		cp := *c
		return &cp, nil
	}
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			mu.Lock()
			defer mu.Unlock()
			c.ID = uint(len(comments) + 1)
			cp := *c
			comments[c.ID] = &cp
			return nil
		},
		getByIDFn:      lookup,
		getForUpdateFn: lookup,
		updateCountFn: func(_ context.Context, c *models.Comment, count int) error {
			mu.Lock()
			defer mu.Unlock()
			c.IdentifiesCount = count
			comments[c.ID].IdentifiesCount = count
			return nil
		},
		softDeleteFn: func(_ context.Context, postID, id uint) error {
			mu.Lock()
			defer mu.Unlock()
			c, ok := comments[id]
			if !ok || c.PostID != postID {
				return models.NewNotFoundError("Comment", id)
			}
			delete(comments, id)
			return nil
		},
	}
}

// uowStub runs fn against fixed repositories. It does not roll back, so
// tests that need rollback semantics use the sqlite-backed unit of work.
type uowStub struct {
	tx    repository.TxRepositories
	calls int
}

func (u *uowStub) Do(_ context.Context, fn func(tx repository.TxRepositories) error) error {
	u.calls++
	return fn(u.tx)
}

// contentFixture wires a ContentService over in-memory stubs.
type contentFixture struct {
	svc       *ContentService
	posts     map[uint]*models.Post
	comments  map[uint]*models.Comment
	postRx    *memReactions
	commentRx *memReactions
	events    *recordingBroadcaster
	admins    map[uint]bool
}

func newContentFixture() *contentFixture {
	f := &contentFixture{
		posts:     make(map[uint]*models.Post),
		comments:  make(map[uint]*models.Comment),
		postRx:    newMemReactions(),
		commentRx: newMemReactions(),
		events:    &recordingBroadcaster{},
		admins:    make(map[uint]bool),
	}
	postRepo := memPostRepo(f.posts)
	commentRepo := memCommentRepo(f.comments)
	uow := &uowStub{tx: repository.TxRepositories{
		Posts:            postRepo,
		Comments:         commentRepo,
		PostReactions:    f.postRx,
		CommentReactions: f.commentRx,
	}}
	isAdmin := func(_ context.Context, id uint) (bool, error) { return f.admins[id], nil }
	f.svc = NewContentService(postRepo, commentRepo, uow, isAdmin, f.events)
	return f
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }
