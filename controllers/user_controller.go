package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/services"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// UpdateProfile 更新当前用户资料
func (uc *UserController) UpdateProfile(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := uc.users.UpdateProfile(c.Request.Context(), username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
