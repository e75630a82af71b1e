package repository

import (
	"context"
	"strings"
	"time"

	"github.com/yassir1410/ModernToDoList/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TodoFilter 查询条件，零值字段不参与过滤
type TodoFilter struct {
	UserID        uint
	Completed     *bool
	Category      *string
	Priority      models.Priority
	DueBefore     *time.Time
	Search        string // 标题或描述，不区分大小写
	Tag           string
	RecurringOnly bool
	NewestFirst   bool
	Limit         int
}

// CategoryCount 按分类与完成状态分组的计数
type CategoryCount struct {
	Category  string
	Completed bool
	Count     int64
}

// TodoRepository 待办存储，子任务与标签随待办在同一事务内读写
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	Save(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, todo *models.Todo) error
	FindByID(ctx context.Context, id uint) (*models.Todo, error)
	Find(ctx context.Context, filter TodoFilter) ([]models.Todo, error)
	CountByCategory(ctx context.Context, userID uint) ([]CategoryCount, error)
}

type todoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo.RefreshSearchText()
		if err := tx.Omit(clause.Associations).Create(todo).Error; err != nil {
			return err
		}
		return syncChildren(tx, todo)
	}))
}

func (r *todoRepository) Save(ctx context.Context, todo *models.Todo) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo.RefreshSearchText()
		// 只更新已存在的行，并发删除后返回不存在
		result := tx.Omit(clause.Associations).Select("*").Updates(todo)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return syncChildren(tx, todo)
	}))
}

// syncChildren 使数据库中的子任务与标签和内存中的集合一致
func syncChildren(tx *gorm.DB, todo *models.Todo) error {
	keep := make([]uint, 0, len(todo.Subtasks))
	for _, s := range todo.Subtasks {
		if s.ID != 0 {
			keep = append(keep, s.ID)
		}
	}
	removed := tx.Where("todo_id = ?", todo.ID)
	if len(keep) > 0 {
		removed = removed.Where("id NOT IN ?", keep)
	}
	if err := removed.Delete(&models.Subtask{}).Error; err != nil {
		return err
	}
	for i := range todo.Subtasks {
		todo.Subtasks[i].TodoID = todo.ID
		if err := tx.Save(&todo.Subtasks[i]).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("todo_id = ?", todo.ID).Delete(&models.TodoTag{}).Error; err != nil {
		return err
	}
	todo.Tags = models.NormalizeTags(todo.Tags)
	todo.TagLinks = make([]models.TodoTag, 0, len(todo.Tags))
	for _, tag := range todo.Tags {
		todo.TagLinks = append(todo.TagLinks, models.TodoTag{TodoID: todo.ID, Tag: tag})
	}
	if len(todo.TagLinks) > 0 {
		if err := tx.Create(&todo.TagLinks).Error; err != nil {
			return err
		}
	}
	if todo.Subtasks == nil {
		todo.Subtasks = []models.Subtask{}
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, todo *models.Todo) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", todo.ID).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("todo_id = ?", todo.ID).Delete(&models.TodoTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Todo{}, todo.ID).Error
	}))
}

func (r *todoRepository) FindByID(ctx context.Context, id uint) (*models.Todo, error) {
	var todo models.Todo
	if err := r.withChildren(r.db.WithContext(ctx)).First(&todo, id).Error; err != nil {
		return nil, translate(err)
	}
	hydrate(&todo)
	return &todo, nil
}

func (r *todoRepository) Find(ctx context.Context, f TodoFilter) ([]models.Todo, error) {
	q := r.db.WithContext(ctx).Model(&models.Todo{})
	if f.UserID != 0 {
		q = q.Where("todos.user_id = ?", f.UserID)
	}
	if f.Completed != nil {
		q = q.Where("todos.completed = ?", *f.Completed)
	}
	if f.Category != nil {
		q = q.Where("todos.category = ?", *f.Category)
	}
	if f.Priority != "" {
		q = q.Where("todos.priority = ?", f.Priority)
	}
	if f.DueBefore != nil {
		q = q.Where("todos.due_date IS NOT NULL AND todos.due_date < ?", *f.DueBefore)
	}
	if f.Search != "" {
		q = q.Where("todos.search_text LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.Tag != "" {
		tagged := r.db.WithContext(ctx).Model(&models.TodoTag{}).Select("todo_id").Where("tag = ?", f.Tag)
		q = q.Where("todos.id IN (?)", tagged)
	}
	if f.RecurringOnly {
		q = q.Where("todos.recurrence_type <> ?", models.RecurrenceNone)
	}
	if f.NewestFirst {
		q = q.Order("todos.created_at DESC").Order("todos.id DESC")
	} else {
		q = q.Order("todos.id")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	todos := make([]models.Todo, 0)
	if err := r.withChildren(q).Find(&todos).Error; err != nil {
		return nil, err
	}
	for i := range todos {
		hydrate(&todos[i])
	}
	return todos, nil
}

func (r *todoRepository) CountByCategory(ctx context.Context, userID uint) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).Model(&models.Todo{}).
		Select("category, completed, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("category, completed").
		Scan(&rows).Error
	return rows, err
}

func (r *todoRepository) withChildren(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("TagLinks")
}

// hydrate 由标签行还原标签集合
func hydrate(todo *models.Todo) {
	tags := make([]string, 0, len(todo.TagLinks))
	for _, link := range todo.TagLinks {
		tags = append(tags, link.Tag)
	}
	todo.Tags = models.NormalizeTags(tags)
	if todo.Subtasks == nil {
		todo.Subtasks = []models.Subtask{}
	}
}
