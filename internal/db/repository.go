package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/limbo-app/limbo/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying gorm handle for query construction
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// ConfessionRepository provides confession-related database operations
type ConfessionRepository struct {
	*Repository
}

// NewConfessionRepository creates a new confession repository
func NewConfessionRepository(repo *Repository) *ConfessionRepository {
	return &ConfessionRepository{Repository: repo}
}

// GetByID retrieves a confession by ID, tags included
func (r *ConfessionRepository) GetByID(ctx context.Context, id int64) (*models.Confession, error) {
	var confession models.Confession
	if err := r.db.WithContext(ctx).Preload("Tags").First(&confession, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &confession, nil
}

// Create creates a new confession
func (r *ConfessionRepository) Create(ctx context.Context, confession *models.Confession) error {
	return r.db.WithContext(ctx).Create(confession).Error
}

// Update updates a confession
func (r *ConfessionRepository) Update(ctx context.Context, confession *models.Confession) error {
	return r.db.WithContext(ctx).Save(confession).Error
}

// Delete removes a confession row. Cascade of votes, comments and tags is
// orchestrated by the caller, not by the storage layer.
func (r *ConfessionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Confession{}, id).Error
}

// UpdateVoteCounters persists both vote counters and the refreshed hot score
// in a single UPDATE so the two counters stay atomic relative to each other.
func (r *ConfessionRepository) UpdateVoteCounters(ctx context.Context, id, heaven, hell int64, hotScore float64) error {
	res := r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"votes_heaven": heaven,
			"votes_hell":   hell,
			"hot_score":    hotScore,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCommentCount persists the recomputed comment count and hot score
func (r *ConfessionRepository) UpdateCommentCount(ctx context.Context, id, count int64, hotScore float64) error {
	res := r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"comments_count": count,
			"hot_score":      hotScore,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateHotScore persists only the hot score (used by the reaper refresh)
func (r *ConfessionRepository) UpdateHotScore(ctx context.Context, id int64, hotScore float64) error {
	return r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("id = ?", id).
		Update("hot_score", hotScore).Error
}

// IncrementViews atomically bumps the view counter
func (r *ConfessionRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

// IncrementShares atomically bumps the share counter
func (r *ConfessionRepository) IncrementShares(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("id = ?", id).
		UpdateColumn("shares_count", gorm.Expr("shares_count + ?", 1)).Error
}

// ReplaceTags replaces the tag rows for a confession
func (r *ConfessionRepository) ReplaceTags(ctx context.Context, id int64, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("confession_id = ?", id).Delete(&models.ConfessionTag{}).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&models.ConfessionTag{ConfessionID: id, Tag: tag}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTags removes all tag rows for a confession
func (r *ConfessionRepository) DeleteTags(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("confession_id = ?", id).Delete(&models.ConfessionTag{}).Error
}

// ListApprovedIDs returns a batch of approved, unexpired confession IDs
// starting after afterID, in ascending ID order. Used by the reaper.
func (r *ConfessionRepository) ListApprovedIDs(ctx context.Context, afterID int64, limit int, now time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("id > ? AND status = ?", afterID, models.StatusApproved).
		Where("expires_at IS NULL OR expires_at >= ?", now).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListExpiredIDs returns a batch of confession IDs whose expiry has
// passed. Used by the reaper sweep.
func (r *ConfessionRepository) ListExpiredIDs(ctx context.Context, limit int, now time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// VoteRepository provides vote ledger database operations
type VoteRepository struct {
	*Repository
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(repo *Repository) *VoteRepository {
	return &VoteRepository{Repository: repo}
}

// GetByUserConfession retrieves the vote for a (user, confession) pair
func (r *VoteRepository) GetByUserConfession(ctx context.Context, userID, confessionID int64) (*models.Vote, error) {
	var vote models.Vote
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND confession_id = ?", userID, confessionID).
		First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// Create creates a new vote. The unique index on (user_id, confession_id)
// rejects concurrent duplicates.
func (r *VoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// Update updates a vote in place
func (r *VoteRepository) Update(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Save(vote).Error
}

// Delete removes a vote
func (r *VoteRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, id).Error
}

// CountByType counts votes of one type for a confession
func (r *VoteRepository) CountByType(ctx context.Context, confessionID int64, voteType models.VoteType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("confession_id = ? AND type = ?", confessionID, voteType).
		Count(&count).Error
	return count, err
}

// CountByUser counts all votes ever cast by a user
func (r *VoteRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// DeleteByConfession removes all votes for a confession (cascade step)
func (r *VoteRepository) DeleteByConfession(ctx context.Context, confessionID int64) error {
	return r.db.WithContext(ctx).Where("confession_id = ?", confessionID).Delete(&models.Vote{}).Error
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Update updates a comment
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// Delete removes a single comment row
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

// GetChildren retrieves the direct children of a comment
func (r *CommentRepository) GetChildren(ctx context.Context, parentID int64) ([]models.Comment, error) {
	var children []models.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Find(&children).Error
	return children, err
}

// CountApprovedByConfession counts approved comments on a confession
func (r *CommentRepository) CountApprovedByConfession(ctx context.Context, confessionID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("confession_id = ? AND status = ?", confessionID, models.StatusApproved).
		Count(&count).Error
	return count, err
}

// CountApprovedByParent counts approved direct replies to a comment
func (r *CommentRepository) CountApprovedByParent(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("parent_id = ? AND status = ?", parentID, models.StatusApproved).
		Count(&count).Error
	return count, err
}

// UpdateRepliesCount persists the recomputed reply counter
func (r *CommentRepository) UpdateRepliesCount(ctx context.Context, id, count int64) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("replies_count", count)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementReaction atomically bumps the likes or dislikes counter
func (r *CommentRepository) IncrementReaction(ctx context.Context, id int64, column string) error {
	if column != "likes" && column != "dislikes" {
		return errors.New("invalid reaction column")
	}
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

// DeleteByConfession removes all comments on a confession (cascade step)
func (r *CommentRepository) DeleteByConfession(ctx context.Context, confessionID int64) error {
	return r.db.WithContext(ctx).Where("confession_id = ?", confessionID).Delete(&models.Comment{}).Error
}

// UserStatsRepository provides per-user activity statistics operations
type UserStatsRepository struct {
	*Repository
}

// NewUserStatsRepository creates a new user stats repository
func NewUserStatsRepository(repo *Repository) *UserStatsRepository {
	return &UserStatsRepository{Repository: repo}
}

// GetByUserID retrieves stats for a user
func (r *UserStatsRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserStats, error) {
	var stats models.UserStats
	if err := r.db.WithContext(ctx).First(&stats, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// Ensure creates the stats row for a user if it does not exist yet
func (r *UserStatsRepository) Ensure(ctx context.Context, userID int64, now time.Time) (*models.UserStats, error) {
	stats, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		return stats, nil
	}
	stats = &models.UserStats{UserID: userID, LastActiveAt: now}
	if err := r.db.WithContext(ctx).Create(stats).Error; err != nil {
		// Lost a create race; the row exists now
		if existing, gerr := r.GetByUserID(ctx, userID); gerr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return stats, nil
}

// Update updates a stats row
func (r *UserStatsRepository) Update(ctx context.Context, stats *models.UserStats) error {
	return r.db.WithContext(ctx).Save(stats).Error
}
