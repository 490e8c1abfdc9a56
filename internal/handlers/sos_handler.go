package handlers

import (
	"reliefnet/internal/middleware"
	"reliefnet/internal/models"
	"reliefnet/internal/services"
	"reliefnet/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSHandler struct {
	sosService services.SOSService
}

func NewSOSHandler(sosService services.SOSService) *SOSHandler {
	return &SOSHandler{
		sosService: sosService,
	}
}

// CreateSOS files a new request. Requesters are anonymous, so no auth.
func (h *SOSHandler) CreateSOS(c *gin.Context) {
	var request services.CreateSOSRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	sos, err := h.sosService.Create(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.CreatedResponse(c, "SOS request created", sos)
}

func (h *SOSHandler) GetSOS(c *gin.Context) {
	id, ok := parseSOSID(c)
	if !ok {
		return
	}

	sos, err := h.sosService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.SuccessResponse(c, "SOS request retrieved", sos)
}

// CancelSOS is reachable by the anonymous requester and by admins.
func (h *SOSHandler) CancelSOS(c *gin.Context) {
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

// MySOS lists the open pool plus this volunteer's own assignments.
func (h *SOSHandler) MySOS(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	requests, err := h.sosService.ListOpenOrMine(c.Request.Context(), identity.ID)
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.SuccessResponse(c, "SOS requests retrieved", requests)
}

func (h *SOSHandler) AcceptSOS(c *gin.Context) {
	id, ok := parseSOSID(c)
	if !ok {
		return
	}

	identity, ok := middleware.GetIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	sos, err := h.sosService.Accept(c.Request.Context(), id, identity.ID)
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.SuccessResponse(c, "SOS request accepted", sos)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *SOSHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseSOSID(c)
	if !ok {
		return
	}

	identity, ok := middleware.GetIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request updateStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	sos, err := h.sosService.UpdateStatus(c.Request.Context(), id, identity.ID, models.SOSStatus(request.Status))
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.SuccessResponse(c, "SOS status updated", sos)
}

type appendChatRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message" binding:"required"`
}

// AppendChat is open to any actor: the requester must be able to reach
// whoever is helping them, so participation is not limited to the assignee.
func (h *SOSHandler) AppendChat(c *gin.Context) {
	id, ok := parseSOSID(c)
	if !ok {
		return
	}

	var request appendChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.sosService.AppendChat(c.Request.Context(), id, request.Sender, request.Message)
	if err != nil {
		respondError(c, err, "SOS request")
		return
	}

	utils.CreatedResponse(c, "Chat message sent", msg)
}

func parseSOSID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid SOS ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
