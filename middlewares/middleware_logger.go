package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// token websocket ada di query, jangan ikut di-log
		if raw := c.Request.URL.RawQuery; raw != "" && c.Query("token") == "" {
			path = path + "?" + raw
		}

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"status":  status,
			"latency": latency.String(),
			"client":  c.ClientIP(),
		})
		if staffID := c.GetString(CtxStaffID); staffID != "" {
			entry = entry.WithField("staff_id", staffID)
		}
		entry.Printf("%s %s", c.Request.Method, path)
	}
}
