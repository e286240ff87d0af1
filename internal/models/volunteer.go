package models

import "gorm.io/gorm"

// Статусы волонтёра.
const (
	VolunteerStatusAvailable    = "available"
	VolunteerStatusBusy         = "busy"
	VolunteerStatusOnAssignment = "on-assignment"
	VolunteerStatusUnavailable  = "unavailable"
)

// Volunteer — профиль волонтёра клуба. Может ссылаться на учётную запись
// пользователя, но контактные данные хранятся в профиле, чтобы справочник
// работал и для волонтёров без аккаунта.
type Volunteer struct {
	gorm.Model
	ClubID         uint   `gorm:"index;not null"`
	UserID         *uint  `gorm:"index"` // Связанная учётная запись (опционально)
	Name           string `gorm:"not null"`
	Email          string `gorm:"not null"`
	Phone          string
	ProfilePicture string
	Skills         string // Навыки через запятую
	Interests      string // Интересы через запятую

	// Флаги доступности
	Weekdays bool
	Weekends bool
	Evenings bool
	Flexible bool

	Status            string `gorm:"index;not null;default:available"`
	IsActive          bool   `gorm:"not null;default:true"`
	ExperienceLevel   string
	YearsOfExperience int
	Notes             string
}
