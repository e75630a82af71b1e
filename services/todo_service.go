package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/models"
	"github.com/yassir1410/ModernToDoList/repository"
)

const (
	recentTodosLimit      = 5
	uncategorizedCategory = "Uncategorized"
)

// TodoService 待办业务逻辑，所有写操作都校验归属
type TodoService struct {
	todos repository.TodoRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewTodoService(todos repository.TodoRepository, users repository.UserRepository) *TodoService {
	return &TodoService{
		todos: todos,
		users: users,
		now:   time.Now,
	}
}

// Create 为指定用户创建待办
func (s *TodoService) Create(ctx context.Context, todo models.Todo, ownerUsername string) (*models.Todo, error) {
	config.Logger.Infow("创建待办", "username", ownerUsername)

	owner, err := s.resolveUser(ctx, ownerUsername)
	if err != nil {
		return nil, err
	}
	if err := normalize(&todo); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	todo.ID = 0
	todo.UserID = owner.ID
	todo.CreatedAt = now
	todo.UpdatedAt = now
	for i := range todo.Subtasks {
		todo.Subtasks[i].ID = 0
		if strings.TrimSpace(todo.Subtasks[i].Title) == "" {
			return nil, validationError("Subtask title is required")
		}
	}
	todo.UpdateProgress()

	if err := s.todos.Create(ctx, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update 覆盖所有可变字段，子任务保持不变
func (s *TodoService) Update(ctx context.Context, id uint, values models.Todo, callerUsername string) (*models.Todo, error) {
	config.Logger.Infow("更新待办", "todoID", id, "username", callerUsername)

	todo, err := s.loadOwned(ctx, id, callerUsername)
	if err != nil {
		return nil, err
	}
	if err := normalize(&values); err != nil {
		return nil, err
	}

	todo.Title = values.Title
	todo.Description = values.Description
	todo.Completed = values.Completed
	todo.Category = values.Category
	todo.DueDate = values.DueDate
	todo.Priority = values.Priority
	todo.Tags = values.Tags
	todo.Notes = values.Notes
	todo.AttachmentURL = values.AttachmentURL
	todo.RecurrenceType = values.RecurrenceType
	todo.RecurrenceEndDate = values.RecurrenceEndDate

	return s.persist(ctx, todo)
}

// Delete 删除待办及其子任务
func (s *TodoService) Delete(ctx context.Context, id uint, callerUsername string) error {
	config.Logger.Infow("删除待办", "todoID", id, "username", callerUsername)

	todo, err := s.loadOwned(ctx, id, callerUsername)
	if err != nil {
		return err
	}
	return s.todos.Delete(ctx, todo)
}

// AddSubtask 添加子任务并重算进度
func (s *TodoService) AddSubtask(ctx context.Context, todoID uint, subtask models.Subtask, callerUsername string) (*models.Todo, error) {
	todo, err := s.loadOwned(ctx, todoID, callerUsername)
	if err != nil {
		return nil, err
	}
	subtask.Title = strings.TrimSpace(subtask.Title)
	if subtask.Title == "" {
		return nil, validationError("Subtask title is required")
	}
	subtask.ID = 0
	todo.Subtasks = append(todo.Subtasks, subtask)
	return s.persist(ctx, todo)
}

// UpdateSubtask 修改子任务完成状态，子任务不存在时不做修改
func (s *TodoService) UpdateSubtask(ctx context.Context, todoID, subtaskID uint, completed bool, callerUsername string) (*models.Todo, error) {
	todo, err := s.loadOwned(ctx, todoID, callerUsername)
	if err != nil {
		return nil, err
	}
	for i := range todo.Subtasks {
		if todo.Subtasks[i].ID == subtaskID {
			todo.Subtasks[i].Completed = completed
			break
		}
	}
	return s.persist(ctx, todo)
}

// RemoveSubtask 删除子任务，子任务不存在时不做修改
func (s *TodoService) RemoveSubtask(ctx context.Context, todoID, subtaskID uint, callerUsername string) (*models.Todo, error) {
	todo, err := s.loadOwned(ctx, todoID, callerUsername)
	if err != nil {
		return nil, err
	}
	kept := todo.Subtasks[:0]
	for _, st := range todo.Subtasks {
		if st.ID != subtaskID {
			kept = append(kept, st)
		}
	}
	todo.Subtasks = kept
	return s.persist(ctx, todo)
}

func (s *TodoService) UpdateNotes(ctx context.Context, id uint, notes, callerUsername string) (*models.Todo, error) {
	todo, err := s.loadOwned(ctx, id, callerUsername)
	if err != nil {
		return nil, err
	}
	todo.Notes = notes
	return s.persist(ctx, todo)
}

func (s *TodoService) UpdateAttachment(ctx context.Context, id uint, attachmentURL, callerUsername string) (*models.Todo, error) {
	todo, err := s.loadOwned(ctx, id, callerUsername)
	if err != nil {
		return nil, err
	}
	todo.AttachmentURL = strings.TrimSpace(attachmentURL)
	return s.persist(ctx, todo)
}

// 以下查询的 username 为空时不按用户过滤

func (s *TodoService) FindByCategory(ctx context.Context, category, username string) ([]models.Todo, error) {
	filter, err := s.scope(ctx, username)
	if err != nil {
		return nil, err
	}
	filter.Category = &category
	return s.todos.Find(ctx, filter)
}

func (s *TodoService) FindByPriority(ctx context.Context, priority models.Priority, username string) ([]models.Todo, error) {
	if priority == "" || !priority.Valid() {
		return nil, validationError("Invalid priority: %s", priority)
	}
	filter, err := s.scope(ctx, username)
	if err != nil {
		return nil, err
	}
	filter.Priority = priority
	return s.todos.Find(ctx, filter)
}

// FindOverdue 截止时间早于当前且未完成
func (s *TodoService) FindOverdue(ctx context.Context, username string) ([]models.Todo, error) {
	filter, err := s.scope(ctx, username)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	pending := false
	filter.DueBefore = &now
	filter.Completed = &pending
	return s.todos.Find(ctx, filter)
}

// Search 在标题和描述中做不区分大小写的子串匹配
func (s *TodoService) Search(ctx context.Context, query, username string) ([]models.Todo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("Search query is required")
	}
	filter, err := s.scope(ctx, username)
	if err != nil {
		return nil, err
	}
	filter.Search = query
	return s.todos.Find(ctx, filter)
}

func (s *TodoService) FindByTag(ctx context.Context, tag, username string) ([]models.Todo, error) {
	filter, err := s.scope(ctx, username)
	if err != nil {
		return nil, err
	}
	filter.Tag = strings.TrimSpace(tag)
	if filter.Tag == "" {
		return nil, validationError("Tag is required")
	}
	return s.todos.Find(ctx, filter)
}

func (s *TodoService) FindRecurring(ctx context.Context, username string) ([]models.Todo, error) {
	filter, err := s.scope(ctx, username)
	if err != nil {
		return nil, err
	}
	filter.RecurringOnly = true
	return s.todos.Find(ctx, filter)
}

func (s *TodoService) FindByUser(ctx context.Context, username string) ([]models.Todo, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.todos.Find(ctx, repository.TodoFilter{UserID: user.ID})
}

// FindByIDAndUser 不属于该用户的待办按不存在处理
func (s *TodoService) FindByIDAndUser(ctx context.Context, id uint, username string) (*models.Todo, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	todo, err := s.todos.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && todo.UserID != user.ID) {
		return nil, notFoundError("Todo not found with id: %d", id)
	}
	return todo, err
}

func (s *TodoService) FindByUserAndCompleted(ctx context.Context, username string, completed bool) ([]models.Todo, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.todos.Find(ctx, repository.TodoFilter{UserID: user.ID, Completed: &completed})
}

// Dashboard 汇总统计与最近创建的五条待办
func (s *TodoService) Dashboard(ctx context.Context, username string) (*models.DashboardResponse, error) {
	config.Logger.Infow("获取仪表盘数据", "username", username)

	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	counts, err := s.todos.CountByCategory(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	stats := models.DashboardStats{ByCategory: make(map[string]int64)}
	for _, c := range counts {
		stats.Total += c.Count
		if c.Completed {
			stats.Completed += c.Count
		} else {
			stats.Pending += c.Count
		}
		category := c.Category
		if category == "" {
			category = uncategorizedCategory
		}
		stats.ByCategory[category] += c.Count
	}

	recent, err := s.todos.Find(ctx, repository.TodoFilter{
		UserID:      user.ID,
		NewestFirst: true,
		Limit:       recentTodosLimit,
	})
	if err != nil {
		return nil, err
	}
	return &models.DashboardResponse{Stats: stats, RecentTodos: recent}, nil
}

func (s *TodoService) persist(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	todo.UpdatedAt = s.now().UTC()
	todo.UpdateProgress()
	if err := s.todos.Save(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) resolveUser(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, unauthorizedError("Not authenticated")
	}
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("User not found")
	}
	return user, err
}

// loadOwned 加载待办并校验归属
func (s *TodoService) loadOwned(ctx context.Context, id uint, username string) (*models.Todo, error) {
	todo, err := s.todos.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("Todo not found")
	}
	if err != nil {
		return nil, err
	}
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if todo.UserID != user.ID {
		config.Logger.Warnw("拒绝越权操作", "todoID", id, "username", username)
		return nil, unauthorizedError("Not authorized to modify this todo")
	}
	return todo, nil
}

func (s *TodoService) scope(ctx context.Context, username string) (repository.TodoFilter, error) {
	if username == "" {
		return repository.TodoFilter{}, nil
	}
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return repository.TodoFilter{}, err
	}
	return repository.TodoFilter{UserID: user.ID}, nil
}

// normalize 校验必填字段与枚举，缺省重复类型为 NONE，时间统一存为 UTC
func normalize(todo *models.Todo) error {
	todo.Title = strings.TrimSpace(todo.Title)
	if todo.Title == "" {
		return validationError("Title is required")
	}
	if !todo.Priority.Valid() {
		return validationError("Invalid priority: %s", todo.Priority)
	}
	if todo.RecurrenceType == "" {
		todo.RecurrenceType = models.RecurrenceNone
	}
	if !todo.RecurrenceType.Valid() {
		return validationError("Invalid recurrence type: %s", todo.RecurrenceType)
	}
	todo.Tags = models.NormalizeTags(todo.Tags)
	todo.DueDate = toUTC(todo.DueDate)
	todo.RecurrenceEndDate = toUTC(todo.RecurrenceEndDate)
	return nil
}

// toUTC SQLite 按文本比较时间，偏移量不同的值无法直接比较
func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
