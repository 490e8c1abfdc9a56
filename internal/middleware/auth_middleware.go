package middleware

import (
	"strings"

	"reliefnet/internal/utils"

	"github.com/gin-gonic/gin"
)

const IdentityKey = "identity"

// AuthRequired validates the bearer token and stores the verified identity
// in the request context.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		identity, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(IdentityKey, *identity)
		c.Next()
	}
}

// VolunteerRequired passes volunteers and admins. Admin is a superset role
// for authorization, but assignment ownership is still checked by identity
// in the service layer.
func VolunteerRequired() gin.HandlerFunc {
	return requireRole(utils.RoleVolunteer)
}

// AdminRequired passes admins only.
func AdminRequired() gin.HandlerFunc {
	return requireRole(utils.RoleAdmin)
}

func requireRole(required utils.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if !identity.Satisfies(required) {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetIdentity returns the identity set by AuthRequired.
func GetIdentity(c *gin.Context) (utils.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return utils.Identity{}, false
	}
	identity, ok := value.(utils.Identity)
	return identity, ok
}
