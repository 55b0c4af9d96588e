package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// PredictorHandlers proxies the paid prediction feature. Routes are guarded upstream.
type PredictorHandlers struct {
	predictor domain.PredictorGateway
	logger    *zap.Logger
}

// NewPredictorHandlers creates new predictor handlers
func NewPredictorHandlers(predictor domain.PredictorGateway, logger *zap.Logger) *PredictorHandlers {
	return &PredictorHandlers{predictor: predictor, logger: logger}
}

// Page renders the predictor landing view with the cascading filters
func (h *PredictorHandlers) Page(c *gin.Context) {
	opts, err := h.predictor.FilterOptions(c.Request.Context())
	if err != nil {
		h.logger.Warn("filter options unavailable", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"filters": opts}})
}

// FilterOptions returns the cascading filters
func (h *PredictorHandlers) FilterOptions(c *gin.Context) {
	opts, err := h.predictor.FilterOptions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// Predict forwards a prediction request
func (h *PredictorHandlers) Predict(c *gin.Context) {
	var req domain.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.predictor.Predict(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
