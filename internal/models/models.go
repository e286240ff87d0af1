package models

import (
	"strings"

	"gorm.io/gorm"
)

// Club — клуб, граница арендатора: все возможности и волонтёры привязаны к клубу.
type Club struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;not null"` // Название клуба
	Description string
}

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Surname      string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	ClubID       *uint  `gorm:"index"` // Клуб пользователя (nil — пользователь ещё не состоит в клубе)
}

// SplitList разбивает строку со значениями через запятую в список:
// пробелы обрезаются, пустые элементы отбрасываются.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}

// JoinList — обратная операция к SplitList для хранения списка одной строкой.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}
