package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limbo-app/limbo/internal/board"
	"github.com/limbo-app/limbo/internal/models"
)

type moderateRequest struct {
	EntityType string `json:"entityType"`
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
}

func (r *Router) moderate(c *gin.Context) {
	moderatorID, ok := requireUser(c)
	if !ok {
		return
	}

	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, board.Wrap(board.KindValidation, err, "invalid request body"))
		return
	}

	entity, err := r.svc.Moderate(c.Request.Context(),
		board.EntityType(req.EntityType), req.ID,
		models.Status(req.Status), req.Reason, moderatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

type batchModerateRequest struct {
	EntityType string  `json:"entityType"`
	IDs        []int64 `json:"ids"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason"`
}

func (r *Router) batchModerate(c *gin.Context) {
	moderatorID, ok := requireUser(c)
	if !ok {
		return
	}

	var req batchModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, board.Wrap(board.KindValidation, err, "invalid request body"))
		return
	}

	results, err := r.svc.BatchModerate(c.Request.Context(),
		board.EntityType(req.EntityType), req.IDs,
		models.Status(req.Status), req.Reason, moderatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

func (r *Router) featureConfession(c *gin.Context) {
	moderatorID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, board.Wrap(board.KindValidation, err, "invalid request body"))
		return
	}

	if err := r.svc.FeatureConfession(c.Request.Context(), id, req.Featured, moderatorID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
