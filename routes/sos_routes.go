package routes

import (
	"reliefnet/internal/handlers"
	"reliefnet/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSOSRoutes sets up routes for SOS request functionality
func SetupSOSRoutes(r *gin.RouterGroup, sosHandler *handlers.SOSHandler, jwtSecret string) {
	// Public routes: anyone in distress can raise or cancel a request
	sos := r.Group("/sos")
	{
		sos.POST("", sosHandler.CreateSOS)
		sos.GET("/:id", sosHandler.GetSOS)
		sos.PATCH("/:id/cancel", sosHandler.CancelSOS)
		sos.POST("/:id/chat", sosHandler.AppendChat)
	}

	// Volunteer routes (require an approved volunteer token)
	volunteer := r.Group("/sos")
	volunteer.Use(middleware.AuthRequired(jwtSecret), middleware.VolunteerRequired())
	{
		volunteer.GET("/mine", sosHandler.MySOS)
		volunteer.PATCH("/:id/accept", sosHandler.AcceptSOS)
		volunteer.PATCH("/:id/status", sosHandler.UpdateStatus)
	}
}
