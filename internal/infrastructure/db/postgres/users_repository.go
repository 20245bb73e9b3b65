package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

// userSortColumns maps logical sort fields to physical columns. The logical
// "role" field orders by privilege rank so that admin > manager > user is
// numeric, not alphabetic; the rank is computed in SQL, never stored.
var userSortColumns = map[string]string{
	"id":       "id",
	"username": "username",
	"role":     "CASE role WHEN 'user' THEN 1 WHEN 'manager' THEN 2 WHEN 'admin' THEN 3 ELSE 0 END",
}

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (r *UsersRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepository) List(ctx context.Context, f ports.UsersFilter) ([]domain.User, int64, error) {
	var preds []Predicate
	if f.Role != "" {
		role := f.Role
		preds = append(preds, func(q *gorm.DB) *gorm.DB { return q.Where("role = ?", role) })
	}
	if f.Search != "" {
		preds = append(preds, searchAny([]string{"username"}, f.Search))
	}

	base := applyPredicates(r.db.WithContext(ctx).Model(&domain.User{}), preds...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q, err := applySort(base, userSortColumns, f.SortBy, f.Order)
	if err != nil {
		return nil, 0, err
	}

	var users []domain.User
	if err := paginate(q, f.Skip, f.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UsersRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (r *UsersRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (r *UsersRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UsersRepository) Delete(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Delete(user).Error
}
