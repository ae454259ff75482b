package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cronbackhq/cronback/internal/api/response"
	"github.com/cronbackhq/cronback/internal/ids"
)

const (
	// ProjectIDHeader names the calling project on every API request.
	ProjectIDHeader = "X-Cronback-Project-Id"
	// ProjectIDKey is the gin context key the project id is stored under.
	ProjectIDKey = "project_id"
)

// ProjectID extracts and validates the caller's project identity.
// Authentication lives in front of this service; here the header only
// has to be present and well-formed.
func ProjectID() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.GetHeader(ProjectIDHeader)
		if projectID == "" {
			response.Unauthorized(c, "missing "+ProjectIDHeader+" header")
			c.Abort()
			return
		}
		if !ids.HasPrefix(projectID, ids.ProjectPrefix) || !ids.Valid(projectID) {
			response.Unauthorized(c, "malformed project id")
			c.Abort()
			return
		}

		c.Set(ProjectIDKey, projectID)
		c.Next()
	}
}

// GetProjectID returns the project id the ProjectID middleware stored.
func GetProjectID(c *gin.Context) string {
	return c.GetString(ProjectIDKey)
}
