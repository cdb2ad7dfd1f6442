package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/retailpulse/inventory-intel/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// RunAnalysis triggers a full recompute. An optional as_of query (YYYY-MM-DD)
// defaults to today.
func (h *AnalyticsHandler) RunAnalysis(c *gin.Context) {
	asOf := time.Now()
	if raw := strings.TrimSpace(c.Query("as_of")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	run, summary, err := h.service.RunAnalysis(c.Request.Context(), asOf)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":     run,
		"summary": summary,
	})
}

func (h *AnalyticsHandler) GetLatestRun(c *gin.Context) {
	run, err := h.service.GetLatestRun(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		errorResponse(c, http.StatusNotFound, "no analysis runs yet")
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	filter := parseAnalyticsFilter(c)

	rows, err := h.service.GetAnalytics(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     rows,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

func (h *AnalyticsHandler) GetHealth(c *gin.Context) {
	health, err := h.service.GetHealth(c.Request.Context(), time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, health)
}

func (h *AnalyticsHandler) GetStockoutForecast(c *gin.Context) {
	items, err := h.service.GetStockoutForecast(c.Request.Context(), time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AnalyticsHandler) GetDeadStock(c *gin.Context) {
	items, err := h.service.GetDeadStock(c.Request.Context(), time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AnalyticsHandler) GetForecasts(c *gin.Context) {
	article := strings.TrimSpace(c.Param("article"))
	if article == "" {
		errorResponse(c, http.StatusBadRequest, "article is required")
		return
	}

	forecasts, err := h.service.GetForecasts(c.Request.Context(), article)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts})
}

// GetClassMatrix serves the ABC x XYZ distribution for an analysis date
// (optional, latest rows when omitted).
func (h *AnalyticsHandler) GetClassMatrix(c *gin.Context) {
	date := strings.TrimSpace(c.Query("analysis_date"))
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid analysis_date, expected YYYY-MM-DD")
			return
		}
	}

	matrix, err := h.service.GetClassMatrix(c.Request.Context(), date)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"matrix": matrix})
}

// GetMonthlySeasonal serves the 12-month seasonal forecast for one article.
func (h *AnalyticsHandler) GetMonthlySeasonal(c *gin.Context) {
	article := strings.TrimSpace(c.Param("article"))
	if article == "" {
		errorResponse(c, http.StatusBadRequest, "article is required")
		return
	}

	months, err := h.service.GetMonthlySeasonal(c.Request.Context(), article, time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// GetWeeklyTrend serves the week-over-week movement report for one article.
func (h *AnalyticsHandler) GetWeeklyTrend(c *gin.Context) {
	article := strings.TrimSpace(c.Param("article"))
	if article == "" {
		errorResponse(c, http.StatusBadRequest, "article is required")
		return
	}

	points, err := h.service.GetWeeklyTrend(c.Request.Context(), article, time.Now())
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": points})
}

func (h *AnalyticsHandler) GetRecommendations(c *gin.Context) {
	urgency := strings.ToLower(strings.TrimSpace(c.Query("urgency")))
	if urgency != "" && !validUrgency(urgency) {
		errorResponse(c, http.StatusBadRequest, "invalid urgency level")
		return
	}
	limit := parsePositiveInt(c, "limit", 0)

	recs, err := h.service.GetRecommendations(c.Request.Context(), urgency, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *AnalyticsHandler) GetListings(c *gin.Context) {
	onlyRecommended := c.DefaultQuery("recommended", "false") == "true"
	limit := parsePositiveInt(c, "limit", 0)

	listings, err := h.service.GetListings(c.Request.Context(), onlyRecommended, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// GetHiddenGems serves low-ranked listings with strong margin and trend.
func (h *AnalyticsHandler) GetHiddenGems(c *gin.Context) {
	gems, err := h.service.GetHiddenGems(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": gems})
}

// GetStockHistory serves the accumulated balance snapshots for one item.
func (h *AnalyticsHandler) GetStockHistory(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "store_id is required")
		return
	}
	article := strings.TrimSpace(c.Query("article"))
	if article == "" {
		errorResponse(c, http.StatusBadRequest, "article is required")
		return
	}

	history, err := h.service.GetStockHistory(c.Request.Context(), storeID, article, time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func parseAnalyticsFilter(c *gin.Context) domain.AnalyticsFilter {
	filter := domain.AnalyticsFilter{
		Page:     parsePositiveInt(c, "page", 1),
		PageSize: parsePositiveInt(c, "page_size", 50),
	}

	for _, raw := range c.QueryArray("store_id") {
		if id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			filter.StoreIDs = append(filter.StoreIDs, id)
		}
	}
	for _, raw := range c.QueryArray("article") {
		if a := strings.TrimSpace(raw); a != "" {
			filter.Articles = append(filter.Articles, a)
		}
	}
	if abc := strings.ToUpper(strings.TrimSpace(c.Query("abc_class"))); domain.ValidABCClass(abc) {
		filter.ABCClass = abc
	}
	if xyz := strings.ToUpper(strings.TrimSpace(c.Query("xyz_class"))); domain.ValidXYZClass(xyz) {
		filter.XYZClass = xyz
	}
	if date := strings.TrimSpace(c.Query("analysis_date")); date != "" {
		if _, err := time.Parse("2006-01-02", date); err == nil {
			filter.AnalysisDate = date
		} else {
			log.Warn().Str("analysis_date", date).Msg("ignoring malformed analysis_date filter")
		}
	}

	return filter
}

func parsePositiveInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func validUrgency(level string) bool {
	switch level {
	case domain.UrgencyLow, domain.UrgencyMedium, domain.UrgencyHigh, domain.UrgencyCritical:
		return true
	}
	return false
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
