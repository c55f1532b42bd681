package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/response"
)

// ResourceID answers 404 when the named path parameter is present but is not a
// UUID, so malformed identifiers never reach the database. Valid values are
// rewritten in canonical lower-case form.
func ResourceID(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for i, p := range c.Params {
			if p.Key != param {
				continue
			}
			id, err := uuid.Parse(p.Value)
			if err != nil {
				response.Error(c, appErrors.ErrNotFound)
				c.Abort()
				return
			}
			c.Params[i].Value = id.String()
		}
		c.Next()
	}
}
