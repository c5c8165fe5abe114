package handlers

import (
	"net/http"

	"campflow/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the latest stored health snapshot.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		// The first check runs a minute after boot; an empty snapshot is
		// not an outage.
		if !status.CheckedAt.IsZero() && (!status.Mongo || !status.Redis) {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
