package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health. Reports the database as part of the check; an
// unreachable database degrades the status but the endpoint itself stays up.
func (s *Server) Health(c *gin.Context) {
	status := "ok"
	message := "考勤机器人运行中"
	httpStatus := http.StatusOK

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			if err := sqlDB.PingContext(c.Request.Context()); err != nil {
				status = "unhealthy"
				message = "数据库连接异常"
				httpStatus = http.StatusServiceUnavailable
			}
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"message":   message,
		"admin_url": "/",
		"time":      time.Now().Format("2006-01-02 15:04:05"),
	})
}
