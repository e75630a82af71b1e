package models

// Subtask 子任务模型，只作为 Todo 的一部分存在
type Subtask struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TodoID    uint   `gorm:"index;not null" json:"-"`
	Title     string `gorm:"type:varchar(255)" json:"title"`
	Completed bool   `json:"completed"`
}

// TodoTag 标签行，(todo_id, tag) 联合主键保证同一待办内标签唯一
type TodoTag struct {
	TodoID uint   `gorm:"primaryKey;autoIncrement:false"`
	Tag    string `gorm:"primaryKey;type:varchar(100);index"`
}
