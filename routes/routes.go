package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/controllers"
	"github.com/yassir1410/ModernToDoList/middleware"
	"github.com/yassir1410/ModernToDoList/services"
	"github.com/yassir1410/ModernToDoList/utils"
)

// Dependencies 路由所需的服务
type Dependencies struct {
	Users             *services.UserService
	Todos             *services.TodoService
	Seeder            *services.Seeder
	Sessions          services.SessionStore
	Tokens            *utils.TokenManager
	InternalAuthToken string
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	authController := controllers.NewAuthController(deps.Users, deps.Tokens, deps.Sessions)
	userController := controllers.NewUserController(deps.Users)
	todoController := controllers.NewTodoController(deps.Todos)
	adminController := controllers.NewAdminController(deps.Users, deps.Seeder)

	requireAuth := middleware.AuthMiddleware(deps.Tokens, deps.Sessions)

	// 公开路由（无需认证）
	public := r.Group("/api/auth")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
	}

	// 需要认证的路由
	auth := r.Group("/api/auth")
	auth.Use(requireAuth)
	{
		auth.GET("/me", authController.Me)
		auth.POST("/logout", authController.Logout)
	}

	users := r.Group("/api/users")
	users.Use(requireAuth)
	{
		users.PUT("/profile", userController.UpdateProfile)
	}

	todos := r.Group("/api/todos")
	todos.Use(requireAuth)
	{
		todos.GET("", todoController.List)
		todos.POST("", todoController.Create)
		todos.GET("/dashboard", todoController.Dashboard)
		todos.GET("/completed", todoController.Completed)
		todos.GET("/pending", todoController.Pending)
		todos.GET("/overdue", todoController.Overdue)
		todos.GET("/recurring", todoController.Recurring)
		todos.GET("/search", todoController.Search)
		todos.GET("/category/:category", todoController.ByCategory)
		todos.GET("/priority/:priority", todoController.ByPriority)
		todos.GET("/tag/:tag", todoController.ByTag)
		todos.GET("/:id", todoController.Get)
		todos.PUT("/:id", todoController.Update)
		todos.DELETE("/:id", todoController.Delete)
		todos.POST("/:id/subtasks", todoController.AddSubtask)
		todos.PUT("/:id/subtasks/:subtaskId", todoController.UpdateSubtask)
		todos.DELETE("/:id/subtasks/:subtaskId", todoController.RemoveSubtask)
		todos.PUT("/:id/notes", todoController.UpdateNotes)
		todos.PUT("/:id/attachment", todoController.UpdateAttachment)
	}

	// 内部路由组（仅限服务器内部调用）
	internal := r.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(deps.InternalAuthToken))
	{
		internal.POST("/reset", adminController.Reset)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
