package models

import "gorm.io/gorm"

// Статусы возможности. Статус не выводится автоматически из заполненности слотов:
// переход open -> completed выполняет планировщик по времени окончания последнего слота,
// статус "filled" выставляется только оператором.
const (
	OpportunityStatusDraft     = "draft"
	OpportunityStatusOpen      = "open"
	OpportunityStatusFilled    = "filled"
	OpportunityStatusCompleted = "completed"
	OpportunityStatusCancelled = "cancelled"
)

// Opportunity — волонтёрская возможность клуба с одним или несколькими слотами времени.
type Opportunity struct {
	gorm.Model
	ClubID         uint       `gorm:"index;not null"` // Клуб-владелец
	Title          string     `gorm:"not null"`
	Description    string     `gorm:"not null"`
	Status         string     `gorm:"index;not null;default:open"`
	RequiredSkills string     // Навыки через запятую, например "Организация,Работа с людьми"
	Notes          string
	TimeSlots      []TimeSlot `gorm:"foreignKey:OpportunityID"`
}

// TimeSlot — окно времени внутри возможности с лимитом волонтёров.
// Дата и время хранятся как "наивные" строки без часового пояса (формат
// "2006-01-02" и "15:04") — пояс нигде не фиксируется, планировщик трактует
// их как локальное время сервера.
type TimeSlot struct {
	gorm.Model
	OpportunityID    uint         `gorm:"index;not null"`
	Date             string       `gorm:"not null"` // "2006-01-02"
	StartTime        string       `gorm:"not null"` // "15:04"
	EndTime          string       `gorm:"not null"` // "15:04"
	VolunteersNeeded int          `gorm:"not null;default:1"` // Лимит волонтёров (> 0)
	Assignments      []Assignment `gorm:"foreignKey:TimeSlotID"`
}
