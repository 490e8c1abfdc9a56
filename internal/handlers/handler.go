package handlers

import (
	"errors"
	"net/http"

	"reliefnet/internal/services"
	"reliefnet/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto transport status codes.
// InvalidTransition is a state conflict, so it shares 409 with assignment
// conflicts.
func respondError(c *gin.Context, err error, resource string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.BadRequestResponse(c, validationErr.Message)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrNotApproved):
		utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}
