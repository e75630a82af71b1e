package models

import (
	"sort"
	"strings"
	"time"
)

// Priority 优先级
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid 空值表示未设置，同样合法
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority 不区分大小写
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p != "" && p.Valid()
}

// RecurrenceType 重复类型
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "NONE"
	RecurrenceDaily   RecurrenceType = "DAILY"
	RecurrenceWeekly  RecurrenceType = "WEEKLY"
	RecurrenceMonthly RecurrenceType = "MONTHLY"
	RecurrenceYearly  RecurrenceType = "YEARLY"
)

func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// Todo 待办模型
type Todo struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Title             string         `gorm:"type:varchar(255);not null" json:"title"`
	Description       string         `gorm:"type:varchar(1000)" json:"description"`
	Completed         bool           `gorm:"index" json:"completed"`
	Category          string         `gorm:"type:varchar(100);index" json:"category"`
	DueDate           *time.Time     `json:"dueDate"`
	Priority          Priority       `gorm:"type:varchar(10)" json:"priority,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	Tags              []string       `gorm:"-" json:"tags"`
	TagLinks          []TodoTag      `gorm:"foreignKey:TodoID" json:"-"`
	Subtasks          []Subtask      `gorm:"foreignKey:TodoID" json:"subtasks"`
	Notes             string         `gorm:"type:text" json:"notes"`
	AttachmentURL     string         `gorm:"type:varchar(2048)" json:"attachmentUrl"`
	Progress          int            `json:"progress"`
	RecurrenceType    RecurrenceType `gorm:"type:varchar(10);not null" json:"recurrenceType"`
	RecurrenceEndDate *time.Time     `json:"recurrenceEndDate"`
	UserID            uint           `gorm:"not null;index" json:"userId"`
	SearchText        string         `gorm:"type:text" json:"-"`
}

// RefreshSearchText 标题与描述的小写副本，供不区分大小写的搜索使用
func (t *Todo) RefreshSearchText() {
	t.SearchText = strings.ToLower(t.Title + "\n" + t.Description)
}

// UpdateProgress 按子任务完成比例重算进度，无子任务时取决于 Completed
func (t *Todo) UpdateProgress() {
	if len(t.Subtasks) == 0 {
		if t.Completed {
			t.Progress = 100
		} else {
			t.Progress = 0
		}
		return
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	t.Progress = done * 100 / len(t.Subtasks)
}

// IsOverdue 截止时间已过且未完成
func (t *Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// NormalizeTags 去空白、去重并排序
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
