package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/services"
)

// TodoController 待办接口，所有操作都以当前用户身份调用服务
type TodoController struct {
	todos *services.TodoService
}

func NewTodoController(todos *services.TodoService) *TodoController {
	return &TodoController{todos: todos}
}

func (tc *TodoController) List(c *gin.Context) {
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindByUser(ctx, username)
	})
}

func (tc *TodoController) Get(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	todo, err := tc.todos.FindByIDAndUser(c.Request.Context(), id, username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (tc *TodoController) Create(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	var req models.TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	todo, err := tc.todos.Create(c.Request.Context(), req.ToTodo(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (tc *TodoController) Update(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	todo, err := tc.todos.Update(c.Request.Context(), id, req.ToTodo(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (tc *TodoController) Delete(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := tc.todos.Delete(c.Request.Context(), id, username); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (tc *TodoController) Dashboard(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	dashboard, err := tc.todos.Dashboard(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (tc *TodoController) Completed(c *gin.Context) {
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindByUserAndCompleted(ctx, username, true)
	})
}

func (tc *TodoController) Pending(c *gin.Context) {
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindByUserAndCompleted(ctx, username, false)
	})
}

func (tc *TodoController) ByCategory(c *gin.Context) {
	category := c.Param("category")
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindByCategory(ctx, category, username)
	})
}

func (tc *TodoController) ByPriority(c *gin.Context) {
	priority, valid := models.ParsePriority(c.Param("priority"))
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority: " + c.Param("priority")})
		return
	}
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindByPriority(ctx, priority, username)
	})
}

func (tc *TodoController) Overdue(c *gin.Context) {
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindOverdue(ctx, username)
	})
}

func (tc *TodoController) Search(c *gin.Context) {
	query, ok := c.GetQuery("query")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter"})
		return
	}
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.Search(ctx, query, username)
	})
}

func (tc *TodoController) ByTag(c *gin.Context) {
	tag := c.Param("tag")
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindByTag(ctx, tag, username)
	})
}

func (tc *TodoController) Recurring(c *gin.Context) {
	tc.list(c, func(ctx context.Context, username string) ([]models.Todo, error) {
		return tc.todos.FindRecurring(ctx, username)
	})
}

func (tc *TodoController) AddSubtask(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subtask := models.Subtask{Title: req.Title, Completed: req.Completed}
	todo, err := tc.todos.AddSubtask(c.Request.Context(), id, subtask, username)
	tc.respondTodo(c, todo, err)
}

// UpdateSubtask 完成状态通过查询参数 completed 传入
func (tc *TodoController) UpdateSubtask(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}
	completed, err := strconv.ParseBool(c.Query("completed"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completed parameter"})
		return
	}
	todo, err := tc.todos.UpdateSubtask(c.Request.Context(), id, subtaskID, completed, username)
	tc.respondTodo(c, todo, err)
}

func (tc *TodoController) RemoveSubtask(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}
	todo, err := tc.todos.RemoveSubtask(c.Request.Context(), id, subtaskID, username)
	tc.respondTodo(c, todo, err)
}

func (tc *TodoController) UpdateNotes(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	todo, err := tc.todos.UpdateNotes(c.Request.Context(), id, req.Notes, username)
	tc.respondTodo(c, todo, err)
}

func (tc *TodoController) UpdateAttachment(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	todo, err := tc.todos.UpdateAttachment(c.Request.Context(), id, req.AttachmentURL, username)
	tc.respondTodo(c, todo, err)
}

func (tc *TodoController) list(c *gin.Context, find func(ctx context.Context, username string) ([]models.Todo, error)) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	todos, err := find(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (tc *TodoController) respondTodo(c *gin.Context, todo *models.Todo, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}
