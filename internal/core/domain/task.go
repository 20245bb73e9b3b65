package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}

// Task is owned directly by a user; UserID is nil while the task is in the
// unassigned pool and any authenticated actor may claim it.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      *uint      `json:"user_id" gorm:"index"`
	Title       string     `json:"title" gorm:"uniqueIndex;not null"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status" gorm:"not null;index"`
	DueDate     *time.Time `json:"due_date" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;index"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Owner *User `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// Expired reports whether the task's due date has already passed.
func (t *Task) Expired(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}
