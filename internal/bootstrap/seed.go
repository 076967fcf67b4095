package bootstrap

import (
	"errors"

	"anoa.com/newtongame/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Models lists every table owned by the backend, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.ScoreEvent{},
		&entity.GameProgress{},
		&entity.CompletionStatus{},
		&entity.Feedback{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// SeedDemoUser creates a "newton" player for local development. It reports
// whether a user was created.
func SeedDemoUser(db *gorm.DB) (bool, error) {
	var existing entity.User
	err := db.Where("username = ?", "newton").First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("apple1687"), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	demo := entity.User{
		Username:     "newton",
		PasswordHash: string(hashed),
	}
	if err := db.Create(&demo).Error; err != nil {
		return false, err
	}
	return true, nil
}
