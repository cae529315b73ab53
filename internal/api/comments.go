package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limbo-app/limbo/internal/board"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parentId"`
}

func (r *Router) createComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	confessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, board.Wrap(board.KindValidation, err, "invalid request body"))
		return
	}

	comment, err := r.svc.CreateComment(c.Request.Context(), userID, confessionID, req.Content, req.ParentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (r *Router) listComments(c *gin.Context) {
	confessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	page, err := r.svc.ListComments(c.Request.Context(), confessionID,
		board.CommentSort(c.DefaultQuery("sort", "latest")),
		intQuery(c, "page", 1),
		intQuery(c, "pageSize", 0))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (r *Router) getComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	comment, err := r.svc.GetComment(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

type editCommentRequest struct {
	Content string `json:"content"`
}

func (r *Router) editComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req editCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, board.Wrap(board.KindValidation, err, "invalid request body"))
		return
	}

	comment, err := r.svc.EditComment(c.Request.Context(), userID, id, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// deleteComment allows the author or a moderator to remove a comment
// subtree.
func (r *Router) deleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comment, err := r.svc.GetComment(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	userID, _ := currentUserID(c)
	if comment.AuthorID != userID && !isModerator(c) {
		writeError(c, board.E(board.KindForbidden, "only the author or a moderator can delete a comment"))
		return
	}

	if err := r.svc.DeleteComment(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) likeComment(c *gin.Context) {
	r.reactToComment(c, r.svc.LikeComment)
}

func (r *Router) dislikeComment(c *gin.Context) {
	r.reactToComment(c, r.svc.DislikeComment)
}

func (r *Router) reactToComment(c *gin.Context, react func(context.Context, int64) error) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := react(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) reportComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.svc.ReportComment(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
