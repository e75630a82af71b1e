package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/middleware"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/services"
	"github.com/yassir1410/ModernToDoList/utils"
)

// AuthController 认证控制器
type AuthController struct {
	users    *services.UserService
	tokens   *utils.TokenManager
	sessions services.SessionStore
}

func NewAuthController(users *services.UserService, tokens *utils.TokenManager, sessions services.SessionStore) *AuthController {
	return &AuthController{users: users, tokens: tokens, sessions: sessions}
}

// Login 用户名密码登录，凭证错误返回 400
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config.Logger.Infow("用户登录", "username", req.Username)

	user, err := ac.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		config.Logger.Warnw("登录失败", "username", req.Username, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Login failed: " + err.Error()})
		return
	}

	ac.respondWithToken(c, user)
}

// Register 注册并直接签发令牌
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}
	config.Logger.Infow("用户注册成功", "userID", user.ID, "username", user.Username)

	ac.respondWithToken(c, user)
}

// Me 当前登录用户
func (ac *AuthController) Me(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	user, err := ac.users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout 注销当前令牌
func (ac *AuthController) Logout(c *gin.Context) {
	claims, ok := c.Get(middleware.ClaimsKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	tc := claims.(*utils.Claims)
	var expiresAt time.Time
	if tc.ExpiresAt != nil {
		expiresAt = tc.ExpiresAt.Time
	}
	if err := ac.sessions.Revoke(c.Request.Context(), tc.ID, expiresAt); err != nil {
		respondError(c, err)
		return
	}
	config.Logger.Infow("用户注销", "username", tc.Username)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out"})
}

func (ac *AuthController) respondWithToken(c *gin.Context, user *models.User) {
	token, err := ac.tokens.GenerateToken(user)
	if err != nil {
		config.Logger.Errorw("令牌生成失败", "error", err, "userID", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: user})
}
