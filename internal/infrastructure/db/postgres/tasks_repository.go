package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

var taskSortColumns = map[string]string{
	"id":       "id",
	"title":    "title",
	"status":   "status",
	"due_date": "due_date",
}

type TasksRepository struct {
	db *gorm.DB
}

func NewTasksRepository(db *gorm.DB) *TasksRepository {
	return &TasksRepository{db: db}
}

func (r *TasksRepository) FindByID(ctx context.Context, id uint) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TasksRepository) FindByTitle(ctx context.Context, title string) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TasksRepository) byOwnerPattern(username string) Predicate {
	sub := r.db.Model(&domain.User{}).Select("id").Where("username ILIKE ?", "%"+username+"%")
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id IN (?)", sub)
	}
}

func (r *TasksRepository) List(ctx context.Context, f ports.TasksFilter) ([]domain.Task, int64, error) {
	var preds []Predicate
	if f.OwnerUsername != "" {
		preds = append(preds, r.byOwnerPattern(f.OwnerUsername))
	}
	if f.Search != "" {
		preds = append(preds, searchAny([]string{"title", "description", "status"}, f.Search))
	}

	base := applyPredicates(r.db.WithContext(ctx).Model(&domain.Task{}), preds...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q, err := applySort(base, taskSortColumns, f.SortBy, f.Order)
	if err != nil {
		return nil, 0, err
	}

	var tasks []domain.Task
	if err := paginate(q, f.Skip, f.Limit).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TasksRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrTaskExists
		}
		return nil, err
	}
	return task, nil
}

func (r *TasksRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrTaskExists
		}
		return nil, err
	}
	return task, nil
}

// Claim assigns the task in one conditional UPDATE applied only while the
// task is unassigned or already owned by userID, so two concurrent claims
// resolve in the store rather than by a read-then-write check.
func (r *TasksRepository) Claim(ctx context.Context, taskID, userID uint, status domain.TaskStatus) (*domain.Task, error) {
	res := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ?", taskID).
		Where("user_id IS NULL OR user_id = ?", userID).
		Updates(map[string]interface{}{"user_id": userID, "status": status})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, taskID); err != nil {
			return nil, err
		}
		return nil, domain.ErrTaskAssigned
	}
	return r.FindByID(ctx, taskID)
}

func (r *TasksRepository) Delete(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Delete(task).Error
}

func (r *TasksRepository) DeleteDone(ctx context.Context) ([]domain.Task, error) {
	return r.deleteWhere(ctx, "status = ?", domain.TaskStatusDone)
}

func (r *TasksRepository) DeleteExpired(ctx context.Context, now time.Time) ([]domain.Task, error) {
	return r.deleteWhere(ctx, "due_date IS NOT NULL AND due_date <= ?", now)
}

// deleteWhere resolves the matching set for the response payload and then
// removes it with one bulk delete. An empty set is domain.ErrNoTasksMatched.
func (r *TasksRepository) deleteWhere(ctx context.Context, cond string, args ...interface{}) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Where(cond, args...).Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, domain.ErrNoTasksMatched
	}
	if err := r.db.WithContext(ctx).Where(cond, args...).Delete(&domain.Task{}).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
