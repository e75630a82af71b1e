package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/services"
)

// AdminController 内部管理接口
type AdminController struct {
	users  *services.UserService
	seeder *services.Seeder
}

func NewAdminController(users *services.UserService, seeder *services.Seeder) *AdminController {
	return &AdminController{users: users, seeder: seeder}
}

// Reset 清空所有用户与待办，seed=true 时重新写入演示数据
func (ac *AdminController) Reset(c *gin.Context) {
	config.Logger.Infow("内部接口调用：重置数据",
		"sourceIP", c.ClientIP(),
		"userAgent", c.Request.UserAgent(),
	)

	ctx := c.Request.Context()
	var err error
	if c.Query("seed") == "true" {
		err = ac.seeder.Seed(ctx)
	} else {
		err = ac.users.DeleteAllUsers(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Data reset"})
}
