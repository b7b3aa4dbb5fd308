package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Pinger reports reachability of a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds all handlers
type Router struct {
	cfg      *config.Config
	meetings *MeetingController
	db       *gorm.DB
	redis    *redis.Client
	graph    Pinger
	storage  Pinger
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetings *MeetingController, db *gorm.DB, redisClient *redis.Client, graph Pinger, storage Pinger) *Router {
	return &Router{
		cfg:      cfg,
		meetings: meetings,
		db:       db,
		redis:    redisClient,
		graph:    graph,
		storage:  storage,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")
	rt.setupMeetingRoutes(v1)

	v1.GET("/search", rt.meetings.Search)
}

// setupMeetingRoutes configures meeting routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings")

	meetingGroup.POST("", rt.meetings.Upload)
	meetingGroup.GET("", rt.meetings.List)
	meetingGroup.GET("/:id", rt.meetings.Details)
	meetingGroup.GET("/:id/status", rt.meetings.Status)
	meetingGroup.GET("/:id/graph-context", rt.meetings.GraphContext)
	meetingGroup.POST("/:id/chat", rt.meetings.Chat)
	meetingGroup.GET("/:id/export", rt.meetings.Export)
}

// healthCheck reports the status of each backing service. The process is
// healthy when the database and redis answer; graph and storage are
// reported but never fail the check since the API degrades without them.
func (rt *Router) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	services := map[string]string{}
	status := http.StatusOK

	services["database"] = "ok"
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			services["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	} else {
		services["database"] = "unconfigured"
		status = http.StatusServiceUnavailable
	}

	services["redis"] = "unconfigured"
	if rt.redis != nil {
		services["redis"] = "ok"
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			services["redis"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	services["graph"] = pingerStatus(ctx, rt.graph)
	services["storage"] = pingerStatus(ctx, rt.storage)

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	return c.JSON(status, map[string]interface{}{
		"status":   overall,
		"services": services,
	})
}

func pingerStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "unconfigured"
	}
	if err := p.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}
