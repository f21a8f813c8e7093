package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dietcascade/portal-api/internal/lifecycle"
	"dietcascade/portal-api/internal/service"
)

// AdminHandler serves the dietitian's admin area.
type AdminHandler struct {
	clientService   service.ClientService
	progressService service.ProgressService
	dietPlanService service.DietPlanService
	overviewService service.OverviewService
	log             *logrus.Logger
}

func NewAdminHandler(
	clientService service.ClientService,
	progressService service.ProgressService,
	dietPlanService service.DietPlanService,
	overviewService service.OverviewService,
	log *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		clientService:   clientService,
		progressService: progressService,
		dietPlanService: dietPlanService,
		overviewService: overviewService,
		log:             log,
	}
}

type AssignPlanRequest struct {
	AssignedPlanType string `json:"assignedPlanType"`
	PlanStartDate    string `json:"planStartDate"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListClients godoc
// @Summary List clients
// @Description Clients newest first, with case-insensitive search on name, phone and instagram.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term"
// @Param status query string false "Status filter (all, active, paused, completed, inactive, pending)"
// @Success 200 {object} ClientListResponse
// @Failure 400 {object} gin.H "Unknown status"
// @Router /admin/clients [get]
func (h *AdminHandler) ListClients(c *gin.Context) {
	dir, err := h.clientService.List(c.Request.Context(), c.Query("search"), c.Query("status"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapDirectoryToResponse(dir))
}

// CreateClient godoc
// @Summary Onboard a client
// @Description Creates the client's login account and client record with its plan dates.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body service.OnboardClientInput true "Client details"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "Email already registered"
// @Router /admin/clients [post]
func (h *AdminHandler) CreateClient(c *gin.Context) {
	var in service.OnboardClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	client, err := h.clientService.Onboard(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	timeline := lifecycle.PlanTimeline(client.Plan(), time.Now())
	c.JSON(http.StatusCreated, MapClientToResponse(client, &timeline))
}

// GetClientDetail godoc
// @Summary Client detail
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {object} ClientDetailResponse
// @Failure 404 {object} gin.H "Client not found"
// @Router /admin/clients/{clientId} [get]
func (h *AdminHandler) GetClientDetail(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	detail, err := h.overviewService.ClientDetail(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapClientDetailToResponse(detail))
}

// UpdateClient godoc
// @Summary Edit a client profile
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param client body service.UpdateClientInput true "Changed fields"
// @Success 200 {object} ClientResponse
// @Router /admin/clients/{clientId} [patch]
func (h *AdminHandler) UpdateClient(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	var in service.UpdateClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), clientID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	timeline := lifecycle.PlanTimeline(client.Plan(), time.Now())
	c.JSON(http.StatusOK, MapClientToResponse(client, &timeline))
}

// GetPlan godoc
// @Summary Plan record of a client
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {object} PlanResponse
// @Router /admin/clients/{clientId}/plan [get]
func (h *AdminHandler) GetPlan(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	plan, err := h.clientService.GetPlan(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(*plan))
}

// AssignPlan godoc
// @Summary Assign a plan
// @Description Sets plan type and start date; the end date is computed from the plan length.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param plan body AssignPlanRequest true "Plan type and start date (YYYY-MM-DD)"
// @Success 200 {object} PlanResponse
// @Failure 400 {object} gin.H "Validation error"
// @Router /admin/clients/{clientId}/plan [put]
func (h *AdminHandler) AssignPlan(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	var req AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	plan, err := h.clientService.AssignPlan(c.Request.Context(), clientID, req.AssignedPlanType, req.PlanStartDate)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(*plan))
}

// UpdateStatus godoc
// @Summary Change client status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} PlanResponse
// @Failure 400 {object} gin.H "Unknown status"
// @Router /admin/clients/{clientId}/status [put]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}

	plan, err := h.clientService.UpdateStatus(c.Request.Context(), clientID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(*plan))
}

// GetClientProgress godoc
// @Summary Progress history of a client
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param metrics query string false "Comma separated chart metrics, default weight_kg"
// @Success 200 {object} HistoryResponse
// @Router /admin/clients/{clientId}/progress [get]
func (h *AdminHandler) GetClientProgress(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	if _, err := h.clientService.Get(c.Request.Context(), clientID); err != nil {
		respondError(c, h.log, err)
		return
	}

	history, err := h.progressService.History(c.Request.Context(), clientID, parseMetrics(c.Query("metrics")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapHistoryToResponse(history))
}

// DeleteClientProgress godoc
// @Summary Delete a progress entry on behalf of a client
// @Tags Admin
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param entryId path string true "Entry ID"
// @Success 204
// @Failure 404 {object} gin.H "Entry not found"
// @Router /admin/clients/{clientId}/progress/{entryId} [delete]
func (h *AdminHandler) DeleteClientProgress(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
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
// @Summary Diet plans of a client, newest first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} DietPlanResponse
// @Router /admin/clients/{clientId}/diet-plans [get]
func (h *AdminHandler) ListDietPlans(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
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

// UploadDietPlan godoc
// @Summary Upload a diet plan document
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param planName formData string true "Plan name"
// @Param notes formData string false "Notes"
// @Param file formData file true "PDF, JPEG or PNG up to 10MB"
// @Success 201 {object} DietPlanResponse
// @Failure 400 {object} gin.H "Validation error"
// @Router /admin/clients/{clientId}/diet-plans [post]
func (h *AdminHandler) UploadDietPlan(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	uploaderID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to get user ID from token")
		return
	}

	file, closeFile, err := formFile(c, "file")
	defer closeFile()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	in := service.DietPlanInput{
		PlanName: strings.TrimSpace(c.PostForm("planName")),
		Notes:    strings.TrimSpace(c.PostForm("notes")),
		File:     file,
	}
	plan, err := h.dietPlanService.Upload(c.Request.Context(), uploaderID, clientID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapDietPlanToResponse(plan))
}

// DeleteDietPlan godoc
// @Summary Delete a diet plan document
// @Tags Admin
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param planId path string true "Diet plan ID"
// @Success 204
// @Router /admin/clients/{clientId}/diet-plans/{planId} [delete]
func (h *AdminHandler) DeleteDietPlan(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "planId")
	if !ok {
		return
	}
	if err := h.dietPlanService.Delete(c.Request.Context(), clientID, planID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DietPlanDownloadURL godoc
// @Summary Temporary download link for a diet plan
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param planId path string true "Diet plan ID"
// @Success 200 {object} gin.H "url"
// @Router /admin/clients/{clientId}/diet-plans/{planId}/download [get]
func (h *AdminHandler) DietPlanDownloadURL(c *gin.Context) {
	clientID, ok := paramObjectID(c, "clientId")
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
