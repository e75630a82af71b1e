package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db    *gorm.DB
	users *UserService
	todos *TodoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	return &testEnv{
		db:    db,
		users: NewUserService(userRepo),
		todos: NewTodoService(repository.NewTodoRepository(db), userRepo),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), username, username+"@example.com", "pw1", "")
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return user
}

func (e *testEnv) createTodo(t *testing.T, username string, todo models.Todo) *models.Todo {
	t.Helper()
	created, err := e.todos.Create(context.Background(), todo, username)
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", todo.Title, err)
	}
	return created
}

func titles(todos []models.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, todo := range todos {
		out = append(out, todo.Title)
	}
	return out
}
