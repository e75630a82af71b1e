package services

import (
	"context"

	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/models"
)

type demoUser struct {
	username, email, password, fullName string
}

type demoTodo struct {
	title, description, category string
	completed                    bool
}

var demoUsers = []demoUser{
	{"admin", "admin@example.com", "admin123", "Admin User"},
	{"john.doe", "john.doe@example.com", "password123", "John Doe"},
	{"alice.johnson", "alice.johnson@example.com", "password123", "Alice Johnson"},
	{"bob.smith", "bob.smith@example.com", "password123", "Bob Smith"},
}

var demoTodos = []demoTodo{
	{"Complete project documentation", "Write comprehensive documentation for the project", "Work", false},
	{"Review pull requests", "Review and provide feedback on team pull requests", "Work", false},
	{"Update dependencies", "Update project dependencies to latest versions", "Maintenance", true},
	{"Schedule team meeting", "Schedule weekly team sync meeting", "Meeting", false},
	{"Prepare presentation", "Prepare slides for the upcoming client presentation", "Presentation", false},
}

// Seeder 清空数据并写入演示用户与待办
type Seeder struct {
	users *UserService
	todos *TodoService
}

func NewSeeder(users *UserService, todos *TodoService) *Seeder {
	return &Seeder{users: users, todos: todos}
}

// Seed 所有演示账号都经过 Register，密码统一哈希
func (s *Seeder) Seed(ctx context.Context) error {
	config.Logger.Infow("开始初始化演示数据")

	if err := s.users.DeleteAllUsers(ctx); err != nil {
		return err
	}

	for _, u := range demoUsers {
		user, err := s.users.Register(ctx, u.username, u.email, u.password, u.fullName)
		if err != nil {
			config.Logger.Errorw("创建演示用户失败", "error", err, "username", u.username)
			return err
		}
		for _, t := range demoTodos {
			todo := models.Todo{
				Title:       t.title,
				Description: t.description,
				Category:    t.category,
				Completed:   t.completed,
			}
			if _, err := s.todos.Create(ctx, todo, user.Username); err != nil {
				config.Logger.Errorw("创建演示待办失败", "error", err, "username", user.Username)
				return err
			}
		}
		config.Logger.Infow("演示用户创建成功", "username", user.Username, "displayName", user.GetDisplayName())
	}

	config.Logger.Infow("演示数据初始化完成")
	return nil
}
