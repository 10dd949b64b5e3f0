package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// RequireRole lets the request through when the authenticated role is one of roles.
// Admin always passes.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		utils.RespondErrorCode(c, http.StatusForbidden, "permission_denied", errors.New(roles[0]+" access required"))
		c.Abort()
	}
}

func RequireStaff() gin.HandlerFunc {
	return RequireRole(models.RoleStaff)
}
