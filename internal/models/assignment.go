package models

import "gorm.io/gorm"

// AssignmentStatusConfirmed — статус назначения по умолчанию. Пока бэкенд не
// различает другие состояния назначения, проекция записей переносит именно это
// значение, а не жёстко зашитую константу на стороне чтения.
const AssignmentStatusConfirmed = "confirmed"

// Assignment — назначение волонтёра на конкретный слот времени.
// Пара (TimeSlotID, VolunteerID) уникальна: повторное назначение — ошибка,
// а не no-op, иначе лимит слота считался бы дважды.
type Assignment struct {
	gorm.Model
	TimeSlotID  uint   `gorm:"index;not null;uniqueIndex:idx_slot_volunteer"`
	VolunteerID uint   `gorm:"index;not null;uniqueIndex:idx_slot_volunteer"`
	Status      string `gorm:"not null;default:confirmed"`
}
