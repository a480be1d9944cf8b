package health

import (
	"context"
	"time"

	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers reports process liveness plus DB and Redis reachability.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// Check GET /api/v1/health (no auth)
func (h *Handlers) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if h.DB == nil {
		dbStatus = "not configured"
	} else if sqlDB, err := h.DB.DB(); err != nil {
		dbStatus = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = err.Error()
	}

	redisStatus := "ok"
	if h.Rdb == nil {
		redisStatus = "not configured"
	} else if err := h.Rdb.Ping(ctx).Err(); err != nil {
		redisStatus = err.Error()
	}

	payload := fiber.Map{
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	}
	if (h.DB != nil && dbStatus != "ok") || (h.Rdb != nil && redisStatus != "ok") {
		return response.Error(c, "Service degraded", 503, payload)
	}
	return response.Success(c, "Service healthy", payload, nil)
}
