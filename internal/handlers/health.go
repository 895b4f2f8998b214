package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Storage     string `json:"storage"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	check := func(name string, ping func(context.Context) error) string {
		if err := ping(ctx); err != nil {
			h.log.Error().Err(err).Str("dependency", name).Msg("health check failed")
			return "error"
		}
		return "ok"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:   "ok",
		Database: check("postgres", h.db.Ping),
		Cache: check("redis", func(ctx context.Context) error {
			return h.cache.Ping(ctx).Err()
		}),
		Storage:     check("storage", h.store.Ping),
		Environment: h.cfg.Environment,
	})
}
