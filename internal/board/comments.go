package board

import (
	"context"
	"database/sql"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/telemetry"
)

// Comment length bounds, measured in bytes
const (
	minCommentLen = 1
	maxCommentLen = 500
)

// CommentSort orders comment listings
type CommentSort string

const (
	CommentSortLatest CommentSort = "latest"
	CommentSortOldest CommentSort = "oldest"
	CommentSortLikes  CommentSort = "likes"
)

// CreateComment stores a new comment on a confession, optionally nested
// under a parent comment of the same confession.
func (s *Service) CreateComment(ctx context.Context, authorID, confessionID int64, content string, parentID *int64) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "board.create_comment")
	defer span.End()

	if l := len(content); l < minCommentLen || l > maxCommentLen {
		return nil, Ef(KindValidation, "comment length must be between %d and %d, got %d", minCommentLen, maxCommentLen, l)
	}
	if err := s.checkQuota(strconv.FormatInt(authorID, 10), ActionComment); err != nil {
		return nil, err
	}

	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return nil, Ef(KindNotFound, "confession %d not found", confessionID)
	}
	if confession.Status != models.StatusApproved {
		return nil, Ef(KindForbidden, "confession %d is %s, commenting requires approved", confessionID, confession.Status)
	}
	if confession.IsExpired(s.now()) {
		return nil, Ef(KindGone, "confession %d has expired", confessionID)
	}

	comment := &models.Comment{
		Content:      content,
		AuthorID:     authorID,
		ConfessionID: confessionID,
		Status:       models.StatusPending,
	}
	if s.cfg.Moderation.AutoApproveComments {
		comment.Status = models.StatusApproved
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			return nil, Wrap(KindInternal, err, "load parent comment")
		}
		if parent == nil {
			return nil, Ef(KindNotFound, "parent comment %d not found", *parentID)
		}
		if parent.ConfessionID != confessionID {
			return nil, Ef(KindValidation, "parent comment %d belongs to a different confession", *parentID)
		}
		comment.ParentID = sql.NullInt64{Int64: parent.ID, Valid: true}
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, Wrap(KindInternal, err, "create comment")
	}

	if comment.Status == models.StatusApproved {
		s.triggerCommentReconcile(ctx, confessionID, comment.ParentID)
	}
	s.recordCommentCreated(ctx, authorID)

	return comment, nil
}

// EditComment replaces a comment's content. Only the author may edit;
// every edit bumps editCount and stamps editedAt.
func (s *Service) EditComment(ctx context.Context, editorID, commentID int64, content string) (*models.Comment, error) {
	if l := len(content); l < minCommentLen || l > maxCommentLen {
		return nil, Ef(KindValidation, "comment length must be between %d and %d, got %d", minCommentLen, maxCommentLen, l)
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load comment")
	}
	if comment == nil {
		return nil, Ef(KindNotFound, "comment %d not found", commentID)
	}
	if comment.AuthorID != editorID {
		return nil, E(KindForbidden, "only the author can edit a comment")
	}

	comment.Content = content
	comment.EditCount++
	comment.EditedAt = sql.NullTime{Time: s.now(), Valid: true}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, Wrap(KindInternal, err, "update comment")
	}

	return comment, nil
}

// DeleteComment removes a comment and, recursively, its replies, then
// reconciles the parent's reply count and the confession's comment
// count. Children are deleted before their parent so no orphan rows
// survive a partial failure.
func (s *Service) DeleteComment(ctx context.Context, commentID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "board.delete_comment")
	defer span.End()

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return Wrap(KindInternal, err, "load comment")
	}
	if comment == nil {
		return Ef(KindNotFound, "comment %d not found", commentID)
	}

	deleted, err := s.deleteCommentTree(ctx, comment)
	if err != nil {
		return err
	}

	s.triggerCommentReconcile(ctx, comment.ConfessionID, comment.ParentID)

	s.logger.Info("comment deleted",
		zap.Int64("comment_id", commentID),
		zap.Int64("confession_id", comment.ConfessionID),
		zap.Int("cascade_size", deleted))

	return nil
}

// deleteCommentTree removes a comment subtree depth-first and returns how
// many rows were deleted.
func (s *Service) deleteCommentTree(ctx context.Context, comment *models.Comment) (int, error) {
	children, err := s.comments.GetChildren(ctx, comment.ID)
	if err != nil {
		return 0, Wrap(KindInternal, err, "load comment children")
	}

	deleted := 0
	for i := range children {
		n, err := s.deleteCommentTree(ctx, &children[i])
		if err != nil {
			return deleted, err
		}
		deleted += n
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return deleted, Wrap(KindInternal, err, "delete comment")
	}
	return deleted + 1, nil
}

// GetComment loads a single comment
func (s *Service) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load comment")
	}
	if comment == nil {
		return nil, Ef(KindNotFound, "comment %d not found", id)
	}
	return comment, nil
}

// LikeComment bumps the like counter. Comments own their like/dislike
// counters directly; there is no per-user reaction ledger.
func (s *Service) LikeComment(ctx context.Context, id int64) error {
	return s.react(ctx, id, "likes")
}

// DislikeComment bumps the dislike counter
func (s *Service) DislikeComment(ctx context.Context, id int64) error {
	return s.react(ctx, id, "dislikes")
}

func (s *Service) react(ctx context.Context, id int64, column string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return Wrap(KindInternal, err, "load comment")
	}
	if comment == nil {
		return Ef(KindNotFound, "comment %d not found", id)
	}
	if comment.Status != models.StatusApproved {
		return Ef(KindForbidden, "comment %d is %s", id, comment.Status)
	}
	if err := s.comments.IncrementReaction(ctx, id, column); err != nil {
		return Wrap(KindInternal, err, "increment reaction")
	}
	return nil
}

// ListComments returns a page of approved comments on a confession
func (s *Service) ListComments(ctx context.Context, confessionID int64, sort CommentSort, page, pageSize int) (*CommentPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "board.list_comments")
	defer span.End()

	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return nil, Ef(KindNotFound, "confession %d not found", confessionID)
	}

	page, pageSize = s.clampPage(page, pageSize)

	query := s.db.DB.WithContext(ctx).
		Model(&models.Comment{}).
		Where("confession_id = ? AND status = ?", confessionID, models.StatusApproved)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Wrap(KindInternal, err, "count comments")
	}

	switch sort {
	case CommentSortOldest:
		query = query.Order("created_at ASC").Order("id ASC")
	case CommentSortLikes:
		query = query.Order("(likes - dislikes) DESC").Order("created_at DESC").Order("id DESC")
	case CommentSortLatest, "":
		query = query.Order("created_at DESC").Order("id DESC")
	default:
		return nil, Ef(KindValidation, "invalid comment sort %q", sort)
	}

	var items []models.Comment
	if err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return nil, Wrap(KindInternal, err, "list comments")
	}

	return &CommentPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
