package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"clubhub/internal/models"
	"clubhub/internal/response"
	"clubhub/internal/storage"
	"clubhub/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errAlreadyAssigned = errors.New("волонтёр уже назначен на слот")
	errSlotFull        = errors.New("лимит волонтёров для слота достигнут")
)

type AssignRequest struct {
	VolunteerID uint `json:"volunteer_id" binding:"required"`
}

// loadSlot загружает слот с проверкой принадлежности возможности.
// Слот всегда адресуется явно — слота "по умолчанию" не существует.
func loadSlot(c *gin.Context, opportunityID uint) (*models.TimeSlot, bool) {
	slotID, err := strconv.Atoi(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Err("INVALID_SLOT_ID", "Неверный идентификатор слота"))
		return nil, false
	}

	var slot models.TimeSlot
	if err := storage.DB.
		Where("opportunity_id = ?", opportunityID).
		First(&slot, slotID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.Err("SLOT_NOT_FOUND", "Слот времени не найден в этой возможности"))
		return nil, false
	}

	return &slot, true
}

// AssignVolunteerHandler обрабатывает назначение волонтёра на слот
// @Summary		Назначение волонтёра
// @Description	Добавляет волонтёра в слот времени с проверкой лимита и повторного назначения
// @Tags			assignments
// @Accept			json
// @Produce		json
// @Param			id		path		string			true	"ID возможности"
// @Param			slot_id	path		string			true	"ID слота"
// @Param			body	body		AssignRequest	true	"ID волонтёра"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Волонтёр назначен, в ответе занятость слота"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации или домена (VALIDATION_ERROR, ALREADY_ASSIGNED, SLOT_FULL, CLUB_NOT_RESOLVED)"
// @Failure		404	{object}	response.ErrorResponse		"Не найдено (OPPORTUNITY_NOT_FOUND, SLOT_NOT_FOUND, VOLUNTEER_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/opportunities/{id}/slots/{slot_id}/assign [post]
func AssignVolunteerHandler(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Error:   "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunity, ok := loadClubOpportunity(c, clubID, false)
	if !ok {
		return
	}

	slot, ok := loadSlot(c, opportunity.ID)
	if !ok {
		return
	}

	var volunteer models.Volunteer
	if err := storage.DB.
		Where("club_id = ?", clubID).
		First(&volunteer, req.VolunteerID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.Err("VOLUNTEER_NOT_FOUND", "Волонтёр не найден"))
		return
	}

	var assigned int64
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		// Захватываем строку слота: конкурентные назначения на один слот
		// выполняются по очереди, и подсчёт не может устареть между
		// проверкой лимита и вставкой.
		if err := tx.Model(&models.TimeSlot{}).
			Where("id = ?", slot.ID).
			Update("updated_at", time.Now()).Error; err != nil {
			return err
		}

		// Повторное назначение — ошибка, а не no-op: иначе занятость слота двоится.
		var existing models.Assignment
		if err := tx.
			Where("time_slot_id = ? AND volunteer_id = ?", slot.ID, volunteer.ID).
			First(&existing).Error; err == nil {
			return errAlreadyAssigned
		}

		if err := tx.Model(&models.Assignment{}).
			Where("time_slot_id = ?", slot.ID).
			Count(&assigned).Error; err != nil {
			return err
		}
		if assigned >= int64(slot.VolunteersNeeded) {
			return errSlotFull
		}

		assignment := models.Assignment{
			TimeSlotID:  slot.ID,
			VolunteerID: volunteer.ID,
			Status:      models.AssignmentStatusConfirmed,
		}
		return tx.Create(&assignment).Error
	})
	switch {
	case errors.Is(txErr, errAlreadyAssigned):
		c.JSON(http.StatusBadRequest, response.Err("ALREADY_ASSIGNED", "Волонтёр уже назначен на этот слот"))
		return
	case errors.Is(txErr, errSlotFull):
		c.JSON(http.StatusBadRequest, response.Err("SLOT_FULL", "Лимит волонтёров для слота уже достигнут"))
		return
	case txErr != nil:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при назначении волонтёра",
			Details: txErr.Error(),
		})
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType:     "volunteer_assigned",
		OpportunityID: c.Param("id"),
		Data: map[string]interface{}{
			"time_slot_id": slot.ID,
			"volunteer_id": volunteer.ID,
			"assigned":     assigned + 1,
			"needed":       slot.VolunteersNeeded,
		},
	})

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Волонтёр назначен на слот",
		Data: gin.H{
			"time_slot_id": slot.ID,
			"assigned":     assigned + 1,
			"needed":       slot.VolunteersNeeded,
		},
	})
}

// UnassignVolunteerHandler обрабатывает снятие волонтёра со слота
// @Summary		Снятие волонтёра
// @Description	Убирает волонтёра из слота; волонтёр обязан быть назначен на слот
// @Tags			assignments
// @Accept			json
// @Produce		json
// @Param			id		path		string			true	"ID возможности"
// @Param			slot_id	path		string			true	"ID слота"
// @Param			body	body		AssignRequest	true	"ID волонтёра"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Волонтёр снят со слота"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации или домена (VALIDATION_ERROR, NOT_ASSIGNED, CLUB_NOT_RESOLVED)"
// @Failure		404	{object}	response.ErrorResponse		"Не найдено (OPPORTUNITY_NOT_FOUND, SLOT_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/opportunities/{id}/slots/{slot_id}/unassign [post]
func UnassignVolunteerHandler(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Error:   "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunity, ok := loadClubOpportunity(c, clubID, false)
	if !ok {
		return
	}

	slot, ok := loadSlot(c, opportunity.ID)
	if !ok {
		return
	}

	var assignment models.Assignment
	if err := storage.DB.
		Where("time_slot_id = ? AND volunteer_id = ?", slot.ID, req.VolunteerID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusBadRequest, response.Err("NOT_ASSIGNED", "Волонтёр не назначен на этот слот"))
		return
	}

	// Удаляем запись физически: мягкое удаление оставило бы пару
	// (слот, волонтёр) в уникальном индексе и заблокировало бы повторное назначение.
	if err := storage.DB.Unscoped().Delete(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при снятии волонтёра со слота",
			Details: err.Error(),
		})
		return
	}

	var assigned int64
	if err := storage.DB.Model(&models.Assignment{}).
		Where("time_slot_id = ?", slot.ID).
		Count(&assigned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка проверки занятости слота",
			Details: err.Error(),
		})
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType:     "volunteer_unassigned",
		OpportunityID: c.Param("id"),
		Data: map[string]interface{}{
			"time_slot_id": slot.ID,
			"volunteer_id": req.VolunteerID,
			"assigned":     assigned,
			"needed":       slot.VolunteersNeeded,
		},
	})

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Волонтёр снят со слота",
		Data: gin.H{
			"time_slot_id": slot.ID,
			"assigned":     assigned,
			"needed":       slot.VolunteersNeeded,
		},
	})
}
