package routes

import (
	"reliefnet/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupVolunteerRoutes sets up registration and login for volunteers
func SetupVolunteerRoutes(r *gin.RouterGroup, volunteerHandler *handlers.VolunteerHandler) {
	volunteers := r.Group("/volunteers")
	{
		volunteers.POST("/register", volunteerHandler.Register)
		volunteers.POST("/login", volunteerHandler.Login)
	}
}
