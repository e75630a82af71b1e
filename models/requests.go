package models

import (
	"strings"
	"time"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=191"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 资料更新请求，nil 表示不修改
type UpdateProfileRequest struct {
	FullName        *string `json:"fullName"`
	Email           *string `json:"email" binding:"omitempty,email,max=191"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

// SubtaskRequest 子任务请求
type SubtaskRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	Completed bool   `json:"completed"`
}

// TodoRequest 创建与更新共用的待办请求，progress 不可由客户端设置
type TodoRequest struct {
	Title             string           `json:"title" binding:"required,max=255"`
	Description       string           `json:"description" binding:"max=1000"`
	Completed         bool             `json:"completed"`
	Category          string           `json:"category" binding:"max=100"`
	DueDate           *time.Time       `json:"dueDate"`
	Priority          string           `json:"priority"`
	Tags              []string         `json:"tags"`
	Subtasks          []SubtaskRequest `json:"subtasks"`
	Notes             string           `json:"notes"`
	AttachmentURL     string           `json:"attachmentUrl" binding:"max=2048"`
	RecurrenceType    string           `json:"recurrenceType"`
	RecurrenceEndDate *time.Time       `json:"recurrenceEndDate"`
}

// ToTodo 转换为模型，枚举统一为大写，合法性由服务层校验
func (r *TodoRequest) ToTodo() Todo {
	todo := Todo{
		Title:             strings.TrimSpace(r.Title),
		Description:       r.Description,
		Completed:         r.Completed,
		Category:          strings.TrimSpace(r.Category),
		DueDate:           r.DueDate,
		Priority:          Priority(strings.ToUpper(strings.TrimSpace(r.Priority))),
		Tags:              r.Tags,
		Notes:             r.Notes,
		AttachmentURL:     r.AttachmentURL,
		RecurrenceType:    RecurrenceType(strings.ToUpper(strings.TrimSpace(r.RecurrenceType))),
		RecurrenceEndDate: r.RecurrenceEndDate,
	}
	for _, s := range r.Subtasks {
		todo.Subtasks = append(todo.Subtasks, Subtask{Title: s.Title, Completed: s.Completed})
	}
	return todo
}

// NotesRequest 备注更新
type NotesRequest struct {
	Notes string `json:"notes"`
}

// AttachmentRequest 附件更新
type AttachmentRequest struct {
	AttachmentURL string `json:"attachmentUrl" binding:"max=2048"`
}
