package board

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/telemetry"
)

// Sort orders confession listings
type Sort string

const (
	// SortLatest orders by creation time, newest first
	SortLatest Sort = "latest"
	// SortHot orders by the persisted hot score
	SortHot Sort = "hot"
	// SortVotes orders by total engagement (heaven + hell), not by heaven
	// count first: ranking by a single side was never a meaningful "most
	// voted" order.
	SortVotes Sort = "votes"
	// SortComments orders by comment count
	SortComments Sort = "comments"
)

// Valid reports whether s is a known sort
func (s Sort) Valid() bool {
	switch s {
	case SortLatest, SortHot, SortVotes, SortComments:
		return true
	}
	return false
}

// ListQuery filters and orders a confession listing
type ListQuery struct {
	Category     models.Category
	Tag          string
	FeaturedOnly bool
	AuthorID     *int64
	Sort         Sort
	Page         int
	PageSize     int
}

// SearchQuery is a relevance-ranked text query over confessions
type SearchQuery struct {
	Text     string
	Category models.Category
	Tags     []string
	Sort     Sort
	Page     int
	PageSize int
}

// ConfessionPage is one page of a confession listing
type ConfessionPage struct {
	Items    []models.Confession `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

// CommentPage is one page of a comment listing
type CommentPage struct {
	Items    []models.Comment `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// ListConfessions returns a page of approved, unexpired confessions
func (s *Service) ListConfessions(ctx context.Context, q ListQuery) (*ConfessionPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "board.list_confessions")
	defer span.End()

	page, pageSize := s.clampPage(q.Page, q.PageSize)

	query := s.visibleConfessions(ctx)

	if q.Category != "" {
		if !q.Category.Valid() {
			return nil, Ef(KindValidation, "invalid category %q", q.Category)
		}
		query = query.Where("category = ?", q.Category)
	}
	if q.Tag != "" {
		tag := strings.ToLower(strings.TrimSpace(q.Tag))
		query = query.Where(
			"EXISTS (SELECT 1 FROM confession_tags ct WHERE ct.confession_id = confessions.id AND ct.tag = ?)",
			tag)
	}
	if q.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if q.AuthorID != nil {
		query = query.Where("author_id = ? AND is_anonymous = ?", *q.AuthorID, false)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Wrap(KindInternal, err, "count confessions")
	}

	query, err := applySort(query, q.Sort)
	if err != nil {
		return nil, err
	}

	var items []models.Confession
	if err := query.Preload("Tags").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return nil, Wrap(KindInternal, err, "list confessions")
	}

	return &ConfessionPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// SearchConfessions runs a weighted keyword match over title, content and
// tags. Title matches outrank content matches, which outrank tag-only
// matches; within equal relevance the requested sort applies.
func (s *Service) SearchConfessions(ctx context.Context, q SearchQuery) (*ConfessionPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "board.search_confessions")
	defer span.End()

	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return s.ListConfessions(ctx, ListQuery{
			Category: q.Category,
			Sort:     q.Sort,
			Page:     q.Page,
			PageSize: q.PageSize,
		})
	}

	page, pageSize := s.clampPage(q.Page, q.PageSize)
	pattern := "%" + text + "%"

	base := s.visibleConfessions(ctx)
	if q.Category != "" {
		if !q.Category.Valid() {
			return nil, Ef(KindValidation, "invalid category %q", q.Category)
		}
		base = base.Where("category = ?", q.Category)
	}
	if len(q.Tags) > 0 {
		base = base.Where(
			"EXISTS (SELECT 1 FROM confession_tags ct WHERE ct.confession_id = confessions.id AND ct.tag IN ?)",
			normalizeTags(q.Tags))
	}

	tagMatch := "EXISTS (SELECT 1 FROM confession_tags ct WHERE ct.confession_id = confessions.id AND ct.tag LIKE ?)"
	base = base.Where(
		"(lower(title) LIKE ? OR lower(content) LIKE ? OR "+tagMatch+")",
		pattern, pattern, pattern)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Wrap(KindInternal, err, "count search results")
	}

	relevance := "(CASE WHEN lower(title) LIKE ? THEN 4 ELSE 0 END)" +
		" + (CASE WHEN lower(content) LIKE ? THEN 2 ELSE 0 END)" +
		" + (CASE WHEN " + tagMatch + " THEN 1 ELSE 0 END)"

	query := base.
		Select("confessions.*, "+relevance+" AS relevance", pattern, pattern, pattern).
		Order("relevance DESC")

	query, err := applySort(query, q.Sort)
	if err != nil {
		return nil, err
	}

	var items []models.Confession
	if err := query.Preload("Tags").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return nil, Wrap(KindInternal, err, "search confessions")
	}

	return &ConfessionPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// visibleConfessions is the base predicate for public listings: approved
// and not expired.
func (s *Service) visibleConfessions(ctx context.Context) *gorm.DB {
	return s.db.DB.WithContext(ctx).
		Model(&models.Confession{}).
		Where("status = ?", models.StatusApproved).
		Where("expires_at IS NULL OR expires_at >= ?", s.now())
}

// applySort appends the ORDER BY clauses for a sort. Every sort carries
// the same stable tie-break: created_at DESC, then id DESC.
func applySort(query *gorm.DB, sort Sort) (*gorm.DB, error) {
	if sort == "" {
		sort = SortLatest
	}
	switch sort {
	case SortLatest:
		// tie-break below covers it
	case SortHot:
		query = query.Order("hot_score DESC")
	case SortVotes:
		query = query.Order("(votes_heaven + votes_hell) DESC")
	case SortComments:
		query = query.Order("comments_count DESC")
	default:
		return nil, Ef(KindValidation, "invalid sort %q", sort)
	}
	return query.Order("created_at DESC").Order("id DESC"), nil
}

// clampPage normalizes pagination against the configured bounds
func (s *Service) clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.Board.DefaultPageSize
	}
	if pageSize > s.cfg.Board.MaxPageSize {
		pageSize = s.cfg.Board.MaxPageSize
	}
	return page, pageSize
}
