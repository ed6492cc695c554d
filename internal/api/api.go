// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/api/admin"
	"github.com/andresuchdata/procurement-dashboard/internal/api/handlers"
	"github.com/andresuchdata/procurement-dashboard/internal/api/middleware"
	"github.com/andresuchdata/procurement-dashboard/internal/drive"
	"github.com/andresuchdata/procurement-dashboard/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

type Services struct {
	DashboardService *service.DashboardService
	// Drive enables the Drive browsing admin routes when set.
	Drive       drive.Browser
	DriveFolder string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.DashboardService != nil {
		dashboardHandler := handlers.NewDashboardHandler(services.DashboardService)
		dashboardGroup := apiGroup.Group("/dashboard")
		{
			dashboardGroup.GET("/tabs", dashboardHandler.GetTabs)
			dashboardGroup.GET("/header", dashboardHandler.GetHeader)
			dashboardGroup.GET("/options", dashboardHandler.GetOptions)
			dashboardGroup.GET("/charts", dashboardHandler.GetTabCharts)
			dashboardGroup.GET("/charts/:id", dashboardHandler.GetChart)
			dashboardGroup.POST("/update", dashboardHandler.PostUpdate)
		}

		adminRouter := mux.NewRouter().PathPrefix("/admin").Subrouter()
		admin.NewHandler(services.DashboardService).RegisterRoutes(adminRouter)
		if services.Drive != nil {
			drive.NewHandler(services.Drive, services.DriveFolder).RegisterRoutes(adminRouter)
		}
		router.Any("/admin/*path", gin.WrapH(adminRouter))
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
