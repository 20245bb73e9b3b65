package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

var dealSortColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"status":     "status",
	"value":      "value",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"closed_at":  "closed_at",
}

// dealDateColumns restricts the date-window filters to timestamp columns.
var dealDateColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"closed_at":  "closed_at",
}

type DealsRepository struct {
	db *gorm.DB
}

func NewDealsRepository(db *gorm.DB) *DealsRepository {
	return &DealsRepository{db: db}
}

func (r *DealsRepository) FindByID(ctx context.Context, id uint) (*domain.Deal, error) {
	var d domain.Deal
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDealNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DealsRepository) FindByTitle(ctx context.Context, title string) (*domain.Deal, error) {
	var d domain.Deal
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDealNotFound
		}
		return nil, err
	}
	return &d, nil
}

// byClientPattern restricts deals to clients whose name matches the pattern.
func (r *DealsRepository) byClientPattern(name string) Predicate {
	sub := r.db.Model(&domain.Client{}).Select("id").Where("name ILIKE ?", "%"+name+"%")
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("client_id IN (?)", sub)
	}
}

// byOwnerPattern walks the ownership chain: users matching the pattern,
// then clients owned by them, then deals of those clients.
func (r *DealsRepository) byOwnerPattern(username string) Predicate {
	users := r.db.Model(&domain.User{}).Select("id").Where("username ILIKE ?", "%"+username+"%")
	clients := r.db.Model(&domain.Client{}).Select("id").Where("user_id IN (?)", users)
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("client_id IN (?)", clients)
	}
}

func (r *DealsRepository) List(ctx context.Context, f ports.DealsFilter) ([]domain.Deal, int64, error) {
	dateCol, ok := dealDateColumns[strings.ToLower(strings.TrimSpace(f.DateField))]
	if f.DateField == "" {
		dateCol = "created_at"
	} else if !ok {
		return nil, 0, fmt.Errorf("%w: unknown date field %q", domain.ErrValidation, f.DateField)
	}

	var preds []Predicate
	if f.ClientName != "" {
		preds = append(preds, r.byClientPattern(f.ClientName))
	}
	if f.OwnerUsername != "" {
		preds = append(preds, r.byOwnerPattern(f.OwnerUsername))
	}
	if f.Search != "" {
		preds = append(preds, searchAny([]string{"title"}, f.Search))
	}
	if f.MoreThan != nil {
		preds = append(preds, atLeast("value", *f.MoreThan))
	}
	if f.LessThan != nil {
		preds = append(preds, atMost("value", *f.LessThan))
	}
	if f.ExactDate != nil {
		from, to := dayWindow(*f.ExactDate)
		preds = append(preds, between(dateCol, from, to))
	}
	if f.EarlierThan != nil {
		preds = append(preds, before(dateCol, *f.EarlierThan))
	}
	if f.LaterThan != nil {
		preds = append(preds, after(dateCol, *f.LaterThan))
	}
	if f.CurrentMonth {
		from, to := monthWindow(time.Now().UTC())
		preds = append(preds, between(dateCol, from, to))
	}

	base := applyPredicates(r.db.WithContext(ctx).Model(&domain.Deal{}), preds...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q, err := applySort(base, dealSortColumns, f.SortBy, f.Order)
	if err != nil {
		return nil, 0, err
	}

	var deals []domain.Deal
	if err := paginate(q, f.Skip, f.Limit).Find(&deals).Error; err != nil {
		return nil, 0, err
	}
	return deals, total, nil
}

func (r *DealsRepository) Create(ctx context.Context, deal *domain.Deal) (*domain.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDealExists
		}
		return nil, err
	}
	return deal, nil
}

func (r *DealsRepository) Update(ctx context.Context, deal *domain.Deal) (*domain.Deal, error) {
	if err := r.db.WithContext(ctx).Save(deal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDealExists
		}
		return nil, err
	}
	return deal, nil
}

func (r *DealsRepository) Delete(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Delete(deal).Error
}

// DeleteByClient resolves the full matching set for the response payload,
// then issues one bulk delete. Zero matches is domain.ErrNoDealsForClient,
// not a no-op success.
func (r *DealsRepository) DeleteByClient(ctx context.Context, clientID uint) ([]domain.Deal, error) {
	var deals []domain.Deal
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Find(&deals).Error; err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, domain.ErrNoDealsForClient
	}
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Delete(&domain.Deal{}).Error; err != nil {
		return nil, err
	}
	return deals, nil
}
