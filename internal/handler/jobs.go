package handler

import (
	"net/http"
	"strconv"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/apierror"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// JobsHandler exposes the dead-letter queue to administrators.
type JobsHandler struct {
	rdb *redis.Client
}

func NewJobsHandler(rdb *redis.Client) *JobsHandler {
	return &JobsHandler{rdb: rdb}
}

// DLQ godoc
// @Summary  Cantidad de emails en la cola de fallidos
// @Tags     jobs
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Router   /v1/jobs/dlq [get]
func (h *JobsHandler) DLQ(c *gin.Context) {
	n, err := worker.DLQLength(c.Request.Context(), h.rdb, worker.QueueEmail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": worker.QueueEmail, "parked": n})
}

// Requeue moves up to ?limit= parked emails (default 50) back to the queue.
func (h *JobsHandler) Requeue(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, apierror.New("limit invalido"))
			return
		}
		limit = n
	}
	moved, err := worker.Requeue(c.Request.Context(), h.rdb, worker.QueueEmail, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requeued": moved})
}
