package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/middleware"
	"github.com/yassir1410/ModernToDoList/services"
)

// respondError 按错误分类返回状态码，未知错误返回 500 并附带错误信息
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		config.Logger.Errorw("请求处理失败",
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestID", c.GetString(middleware.RequestIDKey),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUsername 取认证中间件写入的用户名，缺失时直接返回 401
func currentUsername(c *gin.Context) (string, bool) {
	username := c.GetString(middleware.UsernameKey)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	return username, true
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return 0, false
	}
	return uint(id), true
}
