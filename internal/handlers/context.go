// internal/handlers/context.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/igxmarket/igx-backend/internal/middleware"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

// currentUserID resolves the authenticated caller's id from the request
// context. Routes behind AuthRequired always have one.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// currentIdentity builds the caller's identity from the token claims, or nil
// for anonymous requests.
func currentIdentity(c *gin.Context) *services.Identity {
	return middleware.IdentityFromContext(c)
}

// pathUUID parses a :param path segment as a uuid.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
