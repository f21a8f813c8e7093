package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	log *logrus.Logger,
	jwtSecret string,
	authService service.AuthService,
	clientService service.ClientService,
	progressService service.ProgressService,
	dietPlanService service.DietPlanService,
	overviewService service.OverviewService,
) {
	authHandler := NewAuthHandler(authService, log)
	adminHandler := NewAdminHandler(clientService, progressService, dietPlanService, overviewService, log)
	portalHandler := NewPortalHandler(clientService, progressService, dietPlanService, overviewService, log)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/clients", adminHandler.ListClients)
			adminGroup.POST("/clients", adminHandler.CreateClient)
			adminGroup.GET("/clients/:clientId", adminHandler.GetClientDetail)
			adminGroup.PATCH("/clients/:clientId", adminHandler.UpdateClient)

			// Plan record
			adminGroup.GET("/clients/:clientId/plan", adminHandler.GetPlan)
			adminGroup.PUT("/clients/:clientId/plan", adminHandler.AssignPlan)
			adminGroup.PUT("/clients/:clientId/status", adminHandler.UpdateStatus)

			adminGroup.GET("/clients/:clientId/progress", adminHandler.GetClientProgress)
			adminGroup.DELETE("/clients/:clientId/progress/:entryId", adminHandler.DeleteClientProgress)

			adminGroup.GET("/clients/:clientId/diet-plans", adminHandler.ListDietPlans)
			adminGroup.POST("/clients/:clientId/diet-plans", adminHandler.UploadDietPlan)
			adminGroup.DELETE("/clients/:clientId/diet-plans/:planId", adminHandler.DeleteDietPlan)
			adminGroup.GET("/clients/:clientId/diet-plans/:planId/download", adminHandler.DietPlanDownloadURL)
		}

		// --- Client Portal Routes ---
		portalGroup := protected.Group("/portal")
		portalGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			portalGroup.GET("/dashboard", portalHandler.Dashboard)

			portalGroup.GET("/progress", portalHandler.ProgressHistory)
			portalGroup.POST("/progress", portalHandler.CreateProgress)
			portalGroup.PATCH("/progress/:entryId", portalHandler.UpdateProgress)
			portalGroup.DELETE("/progress/:entryId", portalHandler.DeleteProgress)

			portalGroup.GET("/diet-plans", portalHandler.ListDietPlans)
			portalGroup.GET("/diet-plans/latest", portalHandler.LatestDietPlan)
			portalGroup.GET("/diet-plans/:planId/download", portalHandler.DownloadDietPlan)
		}
	}
}
