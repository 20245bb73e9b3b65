package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// Connect opens a PostgreSQL connection pool. TranslateError is enabled so
// unique-constraint violations surface as gorm.ErrDuplicatedKey and can be
// mapped to the domain's conflict errors.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the four CRM tables. Foreign-key behavior
// (deals cascade with their client, client/task owners set to NULL on user
// delete) comes from the constraint tags on the models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Client{},
		&domain.Deal{},
		&domain.Task{},
	)
}
