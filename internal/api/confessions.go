package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/board"
	"github.com/limbo-app/limbo/internal/cache"
	"github.com/limbo-app/limbo/internal/models"
)

// parseID reads a positive int64 path parameter, writing a 400 on failure
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "invalid " + name,
		})
		return 0, false
	}
	return id, true
}

type createConfessionRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Anonymous     bool     `json:"anonymous"`
	ExpiresInDays *int     `json:"expiresInDays"`
}

func (r *Router) createConfession(c *gin.Context) {
	var req createConfessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, board.Wrap(board.KindValidation, err, "invalid request body"))
		return
	}

	in := board.CreateConfessionInput{
		Title:         req.Title,
		Content:       req.Content,
		Category:      models.Category(req.Category),
		Tags:          req.Tags,
		Anonymous:     req.Anonymous,
		ExpiresInDays: req.ExpiresInDays,
		QuotaKey:      quotaKey(c),
	}
	if id, ok := currentUserID(c); ok {
		in.AuthorID = &id
	}

	confession, err := r.svc.CreateConfession(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, confession)
}

func (r *Router) getConfession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	confession, err := r.svc.GetConfession(c.Request.Context(), id, c.Query("view") != "false")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, confession)
}

func (r *Router) listConfessions(c *gin.Context) {
	q := board.ListQuery{
		Category:     models.Category(c.Query("category")),
		Tag:          c.Query("tag"),
		FeaturedOnly: c.Query("featured") == "true",
		Sort:         board.Sort(c.DefaultQuery("sort", "latest")),
		Page:         intQuery(c, "page", 1),
		PageSize:     intQuery(c, "pageSize", 0),
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, board.E(board.KindValidation, "invalid author"))
			return
		}
		q.AuthorID = &id
	}

	// Per-author listings are not worth caching
	key := ""
	if q.AuthorID == nil {
		key = cache.HashKey("list_confessions",
			string(q.Category), q.Tag, strconv.FormatBool(q.FeaturedOnly),
			string(q.Sort), strconv.Itoa(q.Page), strconv.Itoa(q.PageSize))
		var cached board.ConfessionPage
		if err := r.cache.GetJSON(key, &cached); err == nil {
			c.JSON(http.StatusOK, &cached)
			return
		}
	}

	page, err := r.svc.ListConfessions(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	if key != "" {
		if err := r.cache.SetJSON(key, page, listCacheTTL(q.Sort)); err != nil && err != cache.ErrCacheDisabled {
			r.logger.Warn("list cache write failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, page)
}

func (r *Router) searchConfessions(c *gin.Context) {
	q := board.SearchQuery{
		Text:     c.Query("q"),
		Category: models.Category(c.Query("category")),
		Sort:     board.Sort(c.DefaultQuery("sort", "latest")),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "pageSize", 0),
	}
	if raw := c.Query("tags"); raw != "" {
		q.Tags = strings.Split(raw, ",")
	}

	key := cache.HashKey("search_confessions",
		q.Text, string(q.Category), strings.Join(q.Tags, ","),
		string(q.Sort), strconv.Itoa(q.Page), strconv.Itoa(q.PageSize))
	var cached board.ConfessionPage
	if err := r.cache.GetJSON(key, &cached); err == nil {
		c.JSON(http.StatusOK, &cached)
		return
	}

	page, err := r.svc.SearchConfessions(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := r.cache.SetJSON(key, page, 60*time.Second); err != nil && err != cache.ErrCacheDisabled {
		r.logger.Warn("search cache write failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, page)
}

func (r *Router) deleteConfession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.svc.DeleteConfession(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type castVoteRequest struct {
	Type string `json:"type"`
}

func (r *Router) castVote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, board.Wrap(board.KindValidation, err, "invalid request body"))
		return
	}

	result, err := r.svc.CastVote(c.Request.Context(), userID, id, models.VoteType(req.Type))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r *Router) getUserVote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	vote, err := r.svc.GetUserVote(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vote": vote})
}

func (r *Router) recordShare(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.svc.RecordShare(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) reportConfession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.svc.ReportConfession(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) getUserStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stats, err := r.svc.GetUserStats(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// listCacheTTL returns the cache TTL for a listing sort. Hot rankings move
// slowly; latest listings go stale almost immediately.
func listCacheTTL(sort board.Sort) time.Duration {
	switch sort {
	case board.SortHot:
		return 300 * time.Second
	case board.SortLatest, "":
		return 3 * time.Second
	case board.SortVotes:
		return 30 * time.Second
	default:
		return 60 * time.Second
	}
}

// intQuery parses an integer query parameter with a fallback
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
