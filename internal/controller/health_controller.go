package controller

import (
	"context"
	"net/http"
	"time"

	"healmymind_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Dependency is one component reported by the health check.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthController struct {
	Dependencies []Dependency
}

// NewHealthController checks the database and, when configured, redis.
func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	deps := []Dependency{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		deps = append(deps, Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return &HealthController{Dependencies: deps}
}

// @Summary Health check
// @Description Reports service and dependency status
// @Tags System
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true
	for _, dep := range c.Dependencies {
		if err := dep.Ping(pingCtx); err != nil {
			components[dep.Name] = "down"
			healthy = false
			continue
		}
		components[dep.Name] = "up"
	}

	if !healthy {
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "Dependency unavailable", gin.H{"components": components})
		return
	}
	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
