package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/inventory-intel/internal/service"
)

type TransferHandler struct {
	service *service.TransferService
}

func NewTransferHandler(service *service.TransferService) *TransferHandler {
	return &TransferHandler{service: service}
}

// GetRecommendations computes transfer suggestions on demand; nothing is
// persisted.
func (h *TransferHandler) GetRecommendations(c *gin.Context) {
	recs, err := h.service.Recommend(c.Request.Context(), time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *TransferHandler) GetHotProducts(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid store_id")
		return
	}

	scores, err := h.service.HotProducts(c.Request.Context(), storeID, time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"store_id": storeID, "hot_products": scores})
}

func (h *TransferHandler) GetStorePerformance(c *gin.Context) {
	perf, err := h.service.StorePerformance(c.Request.Context(), time.Now())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": perf})
}
