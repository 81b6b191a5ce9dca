package services

import (
	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService maintains the directory of known chat users. Registration is
// best-effort side work: it logs failures instead of returning them so it can
// never block the caller's primary action.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterOrUpdate upserts a user, overwriting the display name on
// re-registration and reactivating the row.
func (s *UserService) RegisterOrUpdate(userID, userName string) {
	if userID == "" {
		return
	}
	user := models.User{UserID: userID, UserName: userName, IsActive: true}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_name", "is_active"}),
	}).Create(&user).Error
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to register user")
	}
}

// ListActive returns every user with the active flag set.
func (s *UserService) ListActive() ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
