package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/service"
)

// PortalHandler serves the client portal. Every request is scoped to the
// client record linked to the token's user.
type PortalHandler struct {
	clientService   service.ClientService
	progressService service.ProgressService
	dietPlanService service.DietPlanService
	overviewService service.OverviewService
	log             *logrus.Logger
}

func NewPortalHandler(
	clientService service.ClientService,
	progressService service.ProgressService,
	dietPlanService service.DietPlanService,
	overviewService service.OverviewService,
	log *logrus.Logger,
) *PortalHandler {
	return &PortalHandler{
		clientService:   clientService,
		progressService: progressService,
		dietPlanService: dietPlanService,
		overviewService: overviewService,
		log:             log,
	}
}

// currentClientID resolves the client record of the authenticated user.
func (h *PortalHandler) currentClientID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to get user ID from token")
		return primitive.NilObjectID, false
	}
	client, err := h.clientService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return primitive.NilObjectID, false
	}
	return client.ID, true
}

// Dashboard godoc
// @Summary Client dashboard
// @Description Plan figures, latest progress entry, entry count and latest diet plan.
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 404 {object} gin.H "No client record for this account"
// @Router /portal/dashboard [get]
func (h *PortalHandler) Dashboard(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}
	dashboard, err := h.overviewService.Dashboard(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapDashboardToResponse(dashboard))
}

// ProgressHistory godoc
// @Summary Progress history
// @Description Entries in date order with stats per metric and chart series.
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Param metrics query string false "Comma separated chart metrics, default weight_kg"
// @Success 200 {object} HistoryResponse
// @Failure 400 {object} gin.H "Unknown metric"
// @Router /portal/progress [get]
func (h *PortalHandler) ProgressHistory(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}
	history, err := h.progressService.History(c.Request.Context(), clientID, parseMetrics(c.Query("metrics")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapHistoryToResponse(history))
}

// CreateProgress godoc
// @Summary Log progress
// @Description Accepts multipart/form-data (with optional photo) or JSON.
// @Tags Portal
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date formData string true "YYYY-MM-DD"
// @Param weight_kg formData number false "20-300"
// @Param chest_cm formData number false "50-200"
// @Param waist_cm formData number false "40-200"
// @Param hips_cm formData number false "50-200"
// @Param notes formData string false "Notes"
// @Param photo formData file false "Image up to 5MB"
// @Success 201 {object} ProgressEntryResponse
// @Failure 400 {object} gin.H "Validation error"
// @Router /portal/progress [post]
func (h *PortalHandler) CreateProgress(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}

	in, closeFiles, err := bindProgressInput(c)
	defer closeFiles()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	entry, err := h.progressService.Create(c.Request.Context(), clientID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapProgressToResponse(entry))
}

// UpdateProgress godoc
// @Summary Edit a progress entry
// @Description Multipart blank measurement fields clear the value; remove_photo drops the photo.
// @Tags Portal
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Success 200 {object} ProgressEntryResponse
// @Failure 400 {object} gin.H "Validation error"
// @Failure 404 {object} gin.H "Entry not found"
// @Router /portal/progress/{entryId} [patch]
func (h *PortalHandler) UpdateProgress(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}
	entryID, ok := paramObjectID(c, "entryId")
	if !ok {
		return
	}

	patch, closeFiles, err := bindProgressPatch(c)
	defer closeFiles()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	entry, err := h.progressService.Update(c.Request.Context(), clientID, entryID, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapProgressToResponse(entry))
}

// DeleteProgress godoc
// @Summary Delete a progress entry
// @Tags Portal
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Success 204
// @Failure 404 {object} gin.H "Entry not found"
// @Router /portal/progress/{entryId} [delete]
func (h *PortalHandler) DeleteProgress(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}
	entryID, ok := paramObjectID(c, "entryId")
	if !ok {
		return
	}
	if err := h.progressService.Delete(c.Request.Context(), clientID, entryID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDietPlans godoc
// @Summary Own diet plans, newest first
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {array} DietPlanResponse
// @Router /portal/diet-plans [get]
func (h *PortalHandler) ListDietPlans(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}
	plans, err := h.dietPlanService.List(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mapDietPlanList(plans))
}

// LatestDietPlan godoc
// @Summary Most recently uploaded diet plan
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DietPlanResponse
// @Success 204 "No diet plan yet"
// @Router /portal/diet-plans/latest [get]
func (h *PortalHandler) LatestDietPlan(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}
	plan, err := h.dietPlanService.Latest(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if plan == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, MapDietPlanToResponse(plan))
}

// DownloadDietPlan godoc
// @Summary Temporary download link for an own diet plan
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Diet plan ID"
// @Success 200 {object} gin.H "url"
// @Failure 403 {object} gin.H "Plan belongs to another client"
// @Router /portal/diet-plans/{planId}/download [get]
func (h *PortalHandler) DownloadDietPlan(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "planId")
	if !ok {
		return
	}
	url, err := h.dietPlanService.DownloadURL(c.Request.Context(), clientID, planID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
