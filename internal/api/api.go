package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/retailpulse/inventory-intel/internal/api/handlers"
	"github.com/retailpulse/inventory-intel/internal/api/middleware"
	"github.com/retailpulse/inventory-intel/internal/service"
)

type Services struct {
	Analytics *service.AnalyticsService
	Transfers *service.TransferService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Analytics != nil {
			h := handlers.NewAnalyticsHandler(services.Analytics)
			analyticsGroup := apiGroup.Group("/analytics")
			{
				analyticsGroup.POST("/run", h.RunAnalysis)
				analyticsGroup.GET("/run/latest", h.GetLatestRun)
				analyticsGroup.GET("/items", h.GetAnalytics)
				analyticsGroup.GET("/health", h.GetHealth)
				analyticsGroup.GET("/stockouts", h.GetStockoutForecast)
				analyticsGroup.GET("/dead_stock", h.GetDeadStock)
				analyticsGroup.GET("/matrix", h.GetClassMatrix)
				analyticsGroup.GET("/forecasts/:article", h.GetForecasts)
				analyticsGroup.GET("/forecasts/:article/monthly", h.GetMonthlySeasonal)
				analyticsGroup.GET("/forecasts/:article/weekly", h.GetWeeklyTrend)
				analyticsGroup.GET("/stock_history", h.GetStockHistory)
			}

			recGroup := apiGroup.Group("/recommendations")
			{
				recGroup.GET("/purchases", h.GetRecommendations)
				recGroup.GET("/listings", h.GetListings)
				recGroup.GET("/listings/hidden_gems", h.GetHiddenGems)
			}
		}

		if services.Transfers != nil {
			h := handlers.NewTransferHandler(services.Transfers)
			transferGroup := apiGroup.Group("/transfers")
			{
				transferGroup.GET("/recommendations", h.GetRecommendations)
				transferGroup.GET("/hot/:store_id", h.GetHotProducts)
				transferGroup.GET("/performance", h.GetStorePerformance)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
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
