package handlers

import (
	"reliefnet/internal/models"
	"reliefnet/internal/services"
	"reliefnet/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminHandler struct {
	authService services.AuthService
	sosService  services.SOSService
}

func NewAdminHandler(authService services.AuthService, sosService services.SOSService) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		sosService:  sosService,
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var request services.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	response, err := h.authService.LoginAdmin(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err, "Admin")
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

func (h *AdminHandler) ListAllSOS(c *gin.Context) {
	requests, err := h.sosService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.SuccessResponse(c, "SOS requests retrieved", requests)
}

type assignVolunteerRequest struct {
	VolunteerID string `json:"volunteer_id" binding:"required"`
	Status      string `json:"status"`
}

// AssignVolunteer binds a volunteer to a request on the admin's authority.
// Status defaults to Accepted when omitted.
func (h *AdminHandler) AssignVolunteer(c *gin.Context) {
	id, ok := parseSOSID(c)
	if !ok {
		return
	}

	var request assignVolunteerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	volunteerID, err := primitive.ObjectIDFromHex(request.VolunteerID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid volunteer ID")
		return
	}

	sos, err := h.sosService.AssignVolunteer(c.Request.Context(), id, volunteerID, models.SOSStatus(request.Status))
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.SuccessResponse(c, "Volunteer assigned", sos)
}

func (h *AdminHandler) CancelSOS(c *gin.Context) {
	id, ok := parseSOSID(c)
	if !ok {
		return
	}

	sos, err := h.sosService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.SuccessResponse(c, "SOS request cancelled", sos)
}

func (h *AdminHandler) Analytics(c *gin.Context) {
	analytics, err := h.sosService.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err, "Analytics")
		return
	}

	utils.SuccessResponse(c, "Analytics retrieved", analytics)
}

func (h *AdminHandler) ListVolunteers(c *gin.Context) {
	volunteers, err := h.authService.ListVolunteers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Volunteer")
		return
	}

	utils.SuccessResponse(c, "Volunteers retrieved", volunteers)
}

type updateVolunteerStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) UpdateVolunteerStatus(c *gin.Context) {
	volunteerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid volunteer ID")
		return
	}

	var request updateVolunteerStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	volunteer, err := h.authService.UpdateVolunteerStatus(c.Request.Context(), volunteerID, models.VolunteerStatus(request.Status))
	if err != nil {
		respondError(c, err, "Volunteer")
		return
	}

	utils.SuccessResponse(c, "Volunteer status updated", volunteer)
}
