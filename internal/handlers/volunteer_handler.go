package handlers

import (
	"reliefnet/internal/services"
	"reliefnet/internal/utils"

	"github.com/gin-gonic/gin"
)

type VolunteerHandler struct {
	authService services.AuthService
}

func NewVolunteerHandler(authService services.AuthService) *VolunteerHandler {
	return &VolunteerHandler{
		authService: authService,
	}
}

// Register creates a Pending volunteer account awaiting admin approval.
func (h *VolunteerHandler) Register(c *gin.Context) {
	var request services.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	volunteer, err := h.authService.RegisterVolunteer(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err, "Volunteer")
		return
	}

	utils.CreatedResponse(c, "Volunteer registered successfully. Awaiting admin approval.", volunteer)
}

func (h *VolunteerHandler) Login(c *gin.Context) {
	var request services.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	response, err := h.authService.LoginVolunteer(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err, "Volunteer")
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}
