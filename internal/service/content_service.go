package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"navega/internal/models"
	"navega/internal/observability"
	"navega/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Fan-out events emitted by the forum.
const (
	EventNewPost        = "newPost"
	EventNewComment     = "newComment"
	EventPostUpdated    = "postUpdated"
	EventCommentUpdated = "commentUpdated"
	EventPostDeleted    = "postDeleted"
	EventCommentDeleted = "deleteComment"
)

// Broadcaster pushes an event to every connected client. Delivery is best
// effort and must not block the caller.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// PostDeletedPayload is the body of a postDeleted event.
type PostDeletedPayload struct {
	PostID uint `json:"postId"`
}

// CommentDeletedPayload is the body of a deleteComment event.
type CommentDeletedPayload struct {
	CommentID uint `json:"commentId"`
	PostID    uint `json:"postId"`
}

// AdminCheck reports whether userID currently holds the administrator role.
type AdminCheck func(ctx context.Context, userID uint) (bool, error)

// ContentService owns the forum: posts, comments and identify toggles.
// Every event is broadcast only after the change it describes is committed,
// and carries the row as read back inside that transaction.
type ContentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	uow      repository.UnitOfWork
	isAdmin  AdminCheck
	events   Broadcaster
}

type CreatePostInput struct {
	Who      models.Identity
	Message  string
	Nickname string
}

type CreateCommentInput struct {
	Who      models.Identity
	PostID   uint
	Message  string
	Nickname string
}

func NewContentService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	uow repository.UnitOfWork,
	isAdmin AdminCheck,
	events Broadcaster,
) *ContentService {
	return &ContentService{
		posts:    posts,
		comments: comments,
		uow:      uow,
		isAdmin:  isAdmin,
		events:   events,
	}
}

func (s *ContentService) broadcast(event string, payload any) {
	if s.events != nil {
		s.events.Broadcast(event, payload)
	}
}

// ListPosts returns live posts newest first with their live comments.
func (s *ContentService) ListPosts(ctx context.Context, page repository.Page) ([]models.Post, error) {
	return s.posts.List(ctx, page)
}

func validateMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", models.NewValidationError("El mensaje es obligatorio.")
	}
	if utf8.RuneCountInString(message) > models.MaxMessageLength {
		return "", models.NewValidationError("El mensaje es demasiado largo (máximo 10000 caracteres).")
	}
	return message, nil
}

func requireIdentity(who models.Identity) error {
	if who == nil {
		return models.NewValidationError("Se requiere un identificador de usuario o dispositivo.")
	}
	return nil
}

func (s *ContentService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := requireIdentity(in.Who); err != nil {
		return nil, err
	}
	message, err := validateMessage(in.Message)
	if err != nil {
		return nil, err
	}

	post := &models.Post{Message: message, Author: models.NewAuthor(in.Who, in.Nickname)}
	var created *models.Post
	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		if err := tx.Posts.Create(ctx, post); err != nil {
			return err
		}
		created, err = tx.Posts.GetByID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(EventNewPost, created)
	return created, nil
}

func (s *ContentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := requireIdentity(in.Who); err != nil {
		return nil, err
	}
	message, err := validateMessage(in.Message)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		Message: message,
		Author:  models.NewAuthor(in.Who, in.Nickname),
	}
	var created *models.Comment
	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		exists, err := tx.Posts.Exists(ctx, in.PostID)
		if err != nil {
			return err
		}
		if !exists {
			return models.NewNotFoundError("Post", in.PostID)
		}
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		created, err = tx.Comments.GetByID(ctx, in.PostID, comment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(EventNewComment, created)
	return created, nil
}

// toggleReaction flips who's reaction on targetID and returns the recounted
// total. It must run inside a transaction that holds the target row.
func toggleReaction(ctx context.Context, store repository.ReactionStore, targetID uint, who models.Identity) (string, int64, error) {
	reacted, err := store.HasReacted(ctx, targetID, who)
	if err != nil {
		return "", 0, err
	}

	action := "added"
	if reacted {
		action = "removed"
		err = store.RemoveReaction(ctx, targetID, who)
	} else {
		err = store.AddReaction(ctx, targetID, who)
	}
	if err != nil {
		return "", 0, err
	}

	count, err := store.CountReactions(ctx, targetID)
	if err != nil {
		return "", 0, err
	}
	return action, count, nil
}

// TogglePostIdentify adds who's identify on the post, or removes it when
// present, and recounts identifies_count in the same transaction.
func (s *ContentService) TogglePostIdentify(ctx context.Context, postID uint, who models.Identity) (*models.Post, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "content", "toggle_post_identify",
		attribute.Int64("post.id", int64(postID)))
	var (
		action  string
		updated *models.Post
	)
	err := s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		post, err := tx.Posts.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		var count int64
		action, count, err = toggleReaction(ctx, tx.PostReactions, post.ID, who)
		if err != nil {
			return err
		}
		if err := tx.Posts.UpdateIdentifiesCount(ctx, post, int(count)); err != nil {
			return err
		}
		updated, err = tx.Posts.GetByID(ctx, postID)
		return err
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	observability.ReactionToggles.WithLabelValues("post", action).Inc()

	s.broadcast(EventPostUpdated, updated)
	return updated, nil
}

// ToggleCommentIdentify is TogglePostIdentify for a comment of postID.
func (s *ContentService) ToggleCommentIdentify(ctx context.Context, postID, commentID uint, who models.Identity) (*models.Comment, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "content", "toggle_comment_identify",
		attribute.Int64("post.id", int64(postID)),
		attribute.Int64("comment.id", int64(commentID)))
	var (
		action  string
		updated *models.Comment
	)
	err := s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		comment, err := tx.Comments.GetForUpdate(ctx, postID, commentID)
		if err != nil {
			return err
		}
		var count int64
		action, count, err = toggleReaction(ctx, tx.CommentReactions, comment.ID, who)
		if err != nil {
			return err
		}
		if err := tx.Comments.UpdateIdentifiesCount(ctx, comment, int(count)); err != nil {
			return err
		}
		updated, err = tx.Comments.GetByID(ctx, postID, commentID)
		return err
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	observability.ReactionToggles.WithLabelValues("comment", action).Inc()

	s.broadcast(EventCommentUpdated, updated)
	return updated, nil
}

// canModerate reports whether who may remove content written by author.
func (s *ContentService) canModerate(ctx context.Context, author models.Author, who models.Identity) (bool, error) {
	if who == nil {
		return false, nil
	}
	if author.WrittenBy(who) {
		return true, nil
	}
	registered, ok := who.(models.Registered)
	if !ok || s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, registered.UserID)
}

// DeletePost soft-deletes a post. Only its author or an administrator may do
// so; who may be nil when the caller supplied no identity at all.
func (s *ContentService) DeletePost(ctx context.Context, postID uint, who models.Identity) error {
	post, err := s.posts.GetByID(repository.ReadPrimary(ctx), postID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, post.Author, who)
	if err != nil {
		return err
	}
	if !allowed {
		return models.NewForbiddenError("No tienes permiso para eliminar esta publicación.")
	}

	if err := s.posts.SoftDelete(ctx, postID); err != nil {
		return err
	}
	s.broadcast(EventPostDeleted, PostDeletedPayload{PostID: postID})
	return nil
}

// DeleteComment soft-deletes a comment of postID under the same rules as DeletePost.
func (s *ContentService) DeleteComment(ctx context.Context, postID, commentID uint, who models.Identity) error {
	comment, err := s.comments.GetByID(repository.ReadPrimary(ctx), postID, commentID)
	if err != nil {
		return err
	}
	allowed, err := s.canModerate(ctx, comment.Author, who)
	if err != nil {
		return err
	}
	if !allowed {
		return models.NewForbiddenError("No tienes permiso para eliminar este comentario.")
	}

	if err := s.comments.SoftDelete(ctx, postID, commentID); err != nil {
		return err
	}
	s.broadcast(EventCommentDeleted, CommentDeletedPayload{CommentID: commentID, PostID: comment.PostID})
	return nil
}
