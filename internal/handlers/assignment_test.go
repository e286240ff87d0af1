package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"clubhub/internal/models"
	"clubhub/internal/storage"

	"github.com/stretchr/testify/assert"
)

// TestAssignmentFlow — сквозной сценарий: слот на двух волонтёров,
// повторное назначение и превышение лимита отклоняются, снятие освобождает место.
func TestAssignmentFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	club, user := createTestClubUser(t, "assignment-flow")

	// Создаем возможность через HTTP, как это делает форма.
	createBody := map[string]interface{}{
		"title":       "Setup Help",
		"description": "Помощь с подготовкой зала",
		"time_slots": []map[string]interface{}{
			{
				"date":              "2026-09-01",
				"start_time":        "09:00",
				"end_time":          "12:00",
				"volunteers_needed": "2",
			},
		},
	}
	res, parsed := doJSON(t, "POST", ts.URL+"/api/opportunities", user.ID, createBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Не удалось создать возможность")
	assert.Equal(t, true, parsed["success"])

	data := parsed["data"].(map[string]interface{})
	oppID := uint(data["ID"].(float64))
	slots := data["TimeSlots"].([]interface{})
	assert.Equal(t, 1, len(slots), "Должен быть создан ровно один слот")
	slot := slots[0].(map[string]interface{})
	slotID := uint(slot["ID"].(float64))
	assert.Equal(t, float64(2), slot["VolunteersNeeded"], "Лимит слота должен быть 2")

	v1 := createTestVolunteer(t, club.ID, "Волонтёр Один", "v1@example.com", models.VolunteerStatusAvailable)
	v2 := createTestVolunteer(t, club.ID, "Волонтёр Два", "v2@example.com", models.VolunteerStatusAvailable)
	v3 := createTestVolunteer(t, club.ID, "Волонтёр Три", "v3@example.com", models.VolunteerStatusAvailable)

	assignURL := fmt.Sprintf("%s/api/opportunities/%d/slots/%d/assign", ts.URL, oppID, slotID)
	unassignURL := fmt.Sprintf("%s/api/opportunities/%d/slots/%d/unassign", ts.URL, oppID, slotID)

	// Назначаем V1 — слот 1/2.
	res, parsed = doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": v1.ID})
	assert.Equal(t, http.StatusOK, res.StatusCode, "V1 не удалось назначить")
	assert.Equal(t, true, parsed["success"])
	assert.Equal(t, float64(1), parsed["data"].(map[string]interface{})["assigned"])

	// Повторное назначение V1 — ошибка, состояние не меняется.
	res, parsed = doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": v1.ID})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, false, parsed["success"])
	assert.Equal(t, "ALREADY_ASSIGNED", parsed["code"])

	var count int64
	storage.DB.Model(&models.Assignment{}).Where("time_slot_id = ?", slotID).Count(&count)
	assert.Equal(t, int64(1), count, "После отклоненного дубликата слот должен остаться 1/2")

	// Назначаем V2 — слот 2/2.
	res, parsed = doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": v2.ID})
	assert.Equal(t, http.StatusOK, res.StatusCode, "V2 не удалось назначить")
	assert.Equal(t, float64(2), parsed["data"].(map[string]interface{})["assigned"])

	// Назначение V3 сверх лимита — ошибка, слот остается 2/2.
	res, parsed = doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": v3.ID})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "SLOT_FULL", parsed["code"])

	storage.DB.Model(&models.Assignment{}).Where("time_slot_id = ?", slotID).Count(&count)
	assert.Equal(t, int64(2), count, "После отклонения по лимиту слот должен остаться 2/2")
	assert.LessOrEqual(t, count, int64(2), "Число назначений не должно превышать лимит слота")

	// Снимаем V1 — слот 1/2.
	res, parsed = doJSON(t, "POST", unassignURL, user.ID, map[string]interface{}{"volunteer_id": v1.ID})
	assert.Equal(t, http.StatusOK, res.StatusCode, "V1 не удалось снять со слота")
	assert.Equal(t, float64(1), parsed["data"].(map[string]interface{})["assigned"])

	// После снятия V1 место освободилось — V3 назначается.
	res, parsed = doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": v3.ID})
	assert.Equal(t, http.StatusOK, res.StatusCode, "V3 не удалось назначить на освободившееся место")
	assert.Equal(t, float64(2), parsed["data"].(map[string]interface{})["assigned"])
}

// TestAssignConcurrentRespectsCapacity — параллельные назначения разных волонтёров
// на слот с лимитом 1 не превышают лимит: ровно одно назначение проходит.
func TestAssignConcurrentRespectsCapacity(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	club, user := createTestClubUser(t, "concurrent-assign")

	opportunity := models.Opportunity{
		ClubID:      club.ID,
		Title:       "Фотограф события",
		Description: "Нужен один фотограф",
		Status:      models.OpportunityStatusOpen,
		TimeSlots: []models.TimeSlot{
			{Date: "2026-09-05", StartTime: "12:00", EndTime: "16:00", VolunteersNeeded: 1},
		},
	}
	err := storage.DB.Create(&opportunity).Error
	assert.NoError(t, err, "Ошибка создания тестовой возможности")

	const workers = 20
	volunteers := make([]models.Volunteer, workers)
	for i := range volunteers {
		volunteers[i] = createTestVolunteer(t, club.ID,
			fmt.Sprintf("Волонтёр %d", i),
			fmt.Sprintf("race%d@example.com", i),
			models.VolunteerStatusAvailable)
	}

	assignURL := fmt.Sprintf("%s/api/opportunities/%d/slots/%d/assign",
		ts.URL, opportunity.ID, opportunity.TimeSlots[0].ID)

	var wg sync.WaitGroup
	var okCount int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(volunteerID uint) {
			defer wg.Done()
			res, _ := doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": volunteerID})
			if res.StatusCode == http.StatusOK {
				atomic.AddInt64(&okCount, 1)
			}
		}(volunteers[i].ID)
	}
	wg.Wait()

	assert.Equal(t, int64(1), okCount, "Должно пройти ровно одно назначение")

	var count int64
	storage.DB.Model(&models.Assignment{}).
		Where("time_slot_id = ?", opportunity.TimeSlots[0].ID).
		Count(&count)
	assert.Equal(t, int64(1), count, "Число назначений не должно превышать лимит слота")
}

// TestUnassignNotAssigned — снятие неназначенного волонтёра отклоняется и ничего не меняет.
func TestUnassignNotAssigned(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	club, user := createTestClubUser(t, "unassign-absent")

	opportunity := models.Opportunity{
		ClubID:      club.ID,
		Title:       "Дежурство на стойке",
		Description: "Встреча гостей",
		Status:      models.OpportunityStatusOpen,
		TimeSlots: []models.TimeSlot{
			{Date: "2026-09-02", StartTime: "10:00", EndTime: "14:00", VolunteersNeeded: 1},
		},
	}
	err := storage.DB.Create(&opportunity).Error
	assert.NoError(t, err, "Ошибка создания тестовой возможности")

	volunteer := createTestVolunteer(t, club.ID, "Волонтёр", "lone@example.com", models.VolunteerStatusAvailable)

	unassignURL := fmt.Sprintf("%s/api/opportunities/%d/slots/%d/unassign",
		ts.URL, opportunity.ID, opportunity.TimeSlots[0].ID)

	res, parsed := doJSON(t, "POST", unassignURL, user.ID, map[string]interface{}{"volunteer_id": volunteer.ID})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, false, parsed["success"])
	assert.Equal(t, "NOT_ASSIGNED", parsed["code"])

	var count int64
	storage.DB.Model(&models.Assignment{}).Count(&count)
	assert.Equal(t, int64(0), count, "Назначений появиться не должно")
}

// TestAssignRequiresExistingSlot — слот адресуется явно и обязан существовать.
func TestAssignRequiresExistingSlot(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	club, user := createTestClubUser(t, "missing-slot")

	opportunity := models.Opportunity{
		ClubID:      club.ID,
		Title:       "Раздача воды",
		Description: "Пункт на маршруте",
		Status:      models.OpportunityStatusOpen,
		TimeSlots: []models.TimeSlot{
			{Date: "2026-09-03", StartTime: "08:00", EndTime: "11:00", VolunteersNeeded: 3},
		},
	}
	err := storage.DB.Create(&opportunity).Error
	assert.NoError(t, err, "Ошибка создания тестовой возможности")

	volunteer := createTestVolunteer(t, club.ID, "Волонтёр", "slotless@example.com", models.VolunteerStatusAvailable)

	assignURL := fmt.Sprintf("%s/api/opportunities/%d/slots/99999/assign", ts.URL, opportunity.ID)
	res, parsed := doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": volunteer.ID})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "SLOT_NOT_FOUND", parsed["code"])
}

// TestAssignVolunteerFromAnotherClub — волонтёр чужого клуба не назначается.
func TestAssignVolunteerFromAnotherClub(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	club, user := createTestClubUser(t, "own-club")
	otherClub := models.Club{Name: "other-club"}
	err := storage.DB.Create(&otherClub).Error
	assert.NoError(t, err)

	opportunity := models.Opportunity{
		ClubID:      club.ID,
		Title:       "Регистрация участников",
		Description: "Стойка регистрации",
		Status:      models.OpportunityStatusOpen,
		TimeSlots: []models.TimeSlot{
			{Date: "2026-09-04", StartTime: "09:00", EndTime: "13:00", VolunteersNeeded: 2},
		},
	}
	err = storage.DB.Create(&opportunity).Error
	assert.NoError(t, err)

	outsider := createTestVolunteer(t, otherClub.ID, "Чужой", "outsider@example.com", models.VolunteerStatusAvailable)

	assignURL := fmt.Sprintf("%s/api/opportunities/%d/slots/%d/assign",
		ts.URL, opportunity.ID, opportunity.TimeSlots[0].ID)
	res, parsed := doJSON(t, "POST", assignURL, user.ID, map[string]interface{}{"volunteer_id": outsider.ID})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "VOLUNTEER_NOT_FOUND", parsed["code"])
}
