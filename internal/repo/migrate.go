package repo

import (
	"strings"

	"gorm.io/gorm"

	"laundry-api/internal/domain"
)

// AutoMigrate creates or alters the users and services tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Service{})
}

// isDupKey avoids gorm.ErrDuplicatedKey, which needs TranslateError and
// differs between drivers.
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
