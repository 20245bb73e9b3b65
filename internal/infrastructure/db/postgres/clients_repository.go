package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

var clientSortColumns = map[string]string{
	"id":    "id",
	"name":  "name",
	"email": "email",
	"phone": "phone",
}

type ClientsRepository struct {
	db *gorm.DB
}

func NewClientsRepository(db *gorm.DB) *ClientsRepository {
	return &ClientsRepository{db: db}
}

func (r *ClientsRepository) FindByID(ctx context.Context, id uint) (*domain.Client, error) {
	var c domain.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientsRepository) FindByName(ctx context.Context, name string) (*domain.Client, error) {
	var c domain.Client
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ownedByUserPattern restricts clients to those owned by users whose
// username matches the pattern, resolved through a subquery on users.
func (r *ClientsRepository) ownedByUserPattern(username string) Predicate {
	sub := r.db.Model(&domain.User{}).Select("id").Where("username ILIKE ?", "%"+username+"%")
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id IN (?)", sub)
	}
}

func (r *ClientsRepository) List(ctx context.Context, f ports.ClientsFilter) ([]domain.Client, int64, error) {
	var preds []Predicate
	if f.Unassigned {
		preds = append(preds, whereNull("user_id"))
	}
	if f.OwnerUsername != "" {
		preds = append(preds, r.ownedByUserPattern(f.OwnerUsername))
	}
	if f.Search != "" {
		preds = append(preds, searchAny([]string{"name", "email", "phone"}, f.Search))
	}

	base := applyPredicates(r.db.WithContext(ctx).Model(&domain.Client{}), preds...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q, err := applySort(base, clientSortColumns, f.SortBy, f.Order)
	if err != nil {
		return nil, 0, err
	}

	var clients []domain.Client
	if err := paginate(q, f.Skip, f.Limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *ClientsRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrClientExists
		}
		return nil, err
	}
	return client, nil
}

func (r *ClientsRepository) Update(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrClientExists
		}
		return nil, err
	}
	return client, nil
}

// Assign writes the client's owner in one conditional UPDATE. With
// onlyIfUnassigned the store checks user_id IS NULL atomically, so two
// concurrent claims can not both succeed; the loser observes zero affected
// rows and gets domain.ErrClientAssigned.
func (r *ClientsRepository) Assign(ctx context.Context, clientID uint, userID *uint, onlyIfUnassigned bool) (*domain.Client, error) {
	q := r.db.WithContext(ctx).Model(&domain.Client{}).Where("id = ?", clientID)
	if onlyIfUnassigned {
		q = q.Where("user_id IS NULL")
	}

	res := q.Update("user_id", userID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, clientID); err != nil {
			return nil, err
		}
		return nil, domain.ErrClientAssigned
	}
	return r.FindByID(ctx, clientID)
}

func (r *ClientsRepository) Delete(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Delete(client).Error
}
