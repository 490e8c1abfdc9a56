package routes

import (
	"reliefnet/internal/handlers"
	"reliefnet/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up the admin console routes
func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler, jwtSecret string) {
	// Login stays outside the auth chain
	r.POST("/admin/login", adminHandler.Login)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/sos", adminHandler.ListAllSOS)
		admin.PUT("/sos/:id/assign", adminHandler.AssignVolunteer)
		admin.PATCH("/sos/:id/cancel", adminHandler.CancelSOS)
		admin.GET("/analytics", adminHandler.Analytics)
		admin.GET("/volunteers", adminHandler.ListVolunteers)
		admin.PUT("/volunteers/:id/status", adminHandler.UpdateVolunteerStatus)
	}
}
