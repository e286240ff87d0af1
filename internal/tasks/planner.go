package tasks

import (
	"log"
	"strconv"
	"time"

	"clubhub/internal/models"
	"clubhub/internal/storage"
	"clubhub/internal/ws"

	"github.com/robfig/cron/v3"
)

const slotTimeLayout = "2006-01-02 15:04"

// slotEnd собирает момент окончания слота из "наивных" даты и времени.
// Пояс нигде не хранится, поэтому трактуем их как локальное время сервера.
func slotEnd(slot models.TimeSlot) (time.Time, bool) {
	t, err := time.ParseInLocation(slotTimeLayout, slot.Date+" "+slot.EndTime, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CompleteExpiredOpportunities переводит открытые возможности в completed,
// когда окончание последнего слота уже в прошлом. Статус "filled" здесь не
// выводится: заполненность слотов не меняет статус, им управляет оператор.
func CompleteExpiredOpportunities() {
	now := time.Now()

	var opportunities []models.Opportunity
	if err := storage.DB.
		Preload("TimeSlots").
		Where("status = ?", models.OpportunityStatusOpen).
		Find(&opportunities).Error; err != nil {
		log.Println("Ошибка при поиске открытых возможностей:", err)
		return
	}

	for _, opp := range opportunities {
		if len(opp.TimeSlots) == 0 {
			continue
		}

		allPassed := true
		for _, slot := range opp.TimeSlots {
			end, ok := slotEnd(slot)
			if !ok || end.After(now) {
				allPassed = false
				break
			}
		}
		if !allPassed {
			continue
		}

		if err := storage.DB.Model(&models.Opportunity{}).
			Where("id = ?", opp.ID).
			Update("status", models.OpportunityStatusCompleted).Error; err != nil {
			log.Println("Ошибка завершения возможности", opp.Title, ":", err)
			continue
		}

		log.Printf("Возможность '%s' завершена по времени.\n", opp.Title)

		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType:     "opportunity_completed",
			OpportunityID: strconv.Itoa(int(opp.ID)),
			Data: map[string]interface{}{
				"status": models.OpportunityStatusCompleted,
			},
		})
	}
}

// CleanOldOpportunities удаляет давно завершённые и отменённые возможности
// вместе со слотами и назначениями.
func CleanOldOpportunities() {
	threshold := time.Now().Add(-90 * 24 * time.Hour)

	var opportunities []models.Opportunity
	if err := storage.DB.
		Preload("TimeSlots").
		Where("status IN ? AND updated_at < ?",
			[]string{models.OpportunityStatusCompleted, models.OpportunityStatusCancelled},
			threshold).
		Find(&opportunities).Error; err != nil {
		log.Println("Ошибка при поиске устаревших возможностей:", err)
		return
	}

	for _, opp := range opportunities {
		for _, slot := range opp.TimeSlots {
			if err := storage.DB.Unscoped().Where("time_slot_id = ?", slot.ID).Delete(&models.Assignment{}).Error; err != nil {
				log.Println("Ошибка при удалении назначений возможности", opp.Title, ":", err)
			}
		}
		if err := storage.DB.Unscoped().Where("opportunity_id = ?", opp.ID).Delete(&models.TimeSlot{}).Error; err != nil {
			log.Println("Ошибка при удалении слотов возможности", opp.Title, ":", err)
		}
		if err := storage.DB.Unscoped().Delete(&models.Opportunity{}, opp.ID).Error; err != nil {
			log.Println("Ошибка при удалении возможности", opp.Title, ":", err)
		} else {
			log.Printf("Устаревшая возможность '%s' удалена.\n", opp.Title)
		}
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Завершение просроченных возможностей каждые 10 минут.
	_, err := c.AddFunc("0 */10 * * * *", CompleteExpiredOpportunities)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CompleteExpiredOpportunities:", err)
	}

	// Очистка давно завершённых возможностей каждый день в 03:00.
	_, err = c.AddFunc("0 0 3 * * *", CleanOldOpportunities)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldOpportunities:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
