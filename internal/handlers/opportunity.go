package handlers

import (
	"net/http"
	"strconv"

	"clubhub/internal/models"
	"clubhub/internal/response"
	"clubhub/internal/storage"

	"github.com/gin-gonic/gin"
)

// TimeSlotRequest — один слот времени в запросе создания/обновления возможности.
// volunteers_needed принимается строкой: пустое или нечитаемое значение молча
// превращается в 1 (поведение исходной формы), явное неположительное — ошибка.
type TimeSlotRequest struct {
	Date             string `json:"date" binding:"required"`
	StartTime        string `json:"start_time" binding:"required"`
	EndTime          string `json:"end_time" binding:"required"`
	VolunteersNeeded string `json:"volunteers_needed"`
}

type CreateOpportunityRequest struct {
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description" binding:"required"`
	RequiredSkills string            `json:"required_skills"` // Навыки через запятую
	Notes          string            `json:"notes"`
	Status         string            `json:"status"`
	TimeSlots      []TimeSlotRequest `json:"time_slots" binding:"required,min=1,dive"`
}

// parseVolunteersNeeded разбирает лимит волонтёров из строки формы.
func parseVolunteersNeeded(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Нечитаемое значение — молчаливый дефолт, как в форме.
		return 1, true
	}
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// resolveClubID определяет клуб действующего пользователя. Если клуб определить
// нельзя, пишет ответ с ошибкой и возвращает false — никакие запросы к данным
// после этого не выполняются.
func resolveClubID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("userID")

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, response.Err("USER_NOT_FOUND", "Пользователь не найден"))
		return 0, false
	}

	if user.ClubID == nil {
		c.JSON(http.StatusBadRequest, response.Err("CLUB_NOT_RESOLVED", "Не удалось определить клуб пользователя"))
		return 0, false
	}

	return *user.ClubID, true
}

// isValidOpportunityStatus проверяет значение статуса возможности.
func isValidOpportunityStatus(s string) bool {
	switch s {
	case models.OpportunityStatusDraft,
		models.OpportunityStatusOpen,
		models.OpportunityStatusFilled,
		models.OpportunityStatusCompleted,
		models.OpportunityStatusCancelled:
		return true
	}
	return false
}

// CreateOpportunityHandler обрабатывает создание волонтёрской возможности
// @Summary		Создание возможности
// @Description	Создаёт возможность с одним или несколькими слотами времени в клубе пользователя
// @Tags			opportunities
// @Accept			json
// @Produce		json
// @Param			opportunity	body		CreateOpportunityRequest	true	"Данные возможности"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Созданная возможность"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR, INVALID_VOLUNTEERS_NEEDED, INVALID_STATUS, CLUB_NOT_RESOLVED)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/opportunities [post]
func CreateOpportunityHandler(c *gin.Context) {
	var req CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Error:   "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	status := req.Status
	if status == "" {
		status = models.OpportunityStatusOpen
	}
	if !isValidOpportunityStatus(status) {
		c.JSON(http.StatusBadRequest, response.Err("INVALID_STATUS", "Неизвестный статус возможности"))
		return
	}

	slots := make([]models.TimeSlot, 0, len(req.TimeSlots))
	for _, ts := range req.TimeSlots {
		needed, ok := parseVolunteersNeeded(ts.VolunteersNeeded)
		if !ok {
			c.JSON(http.StatusBadRequest, response.Err("INVALID_VOLUNTEERS_NEEDED", "Лимит волонтёров должен быть положительным числом"))
			return
		}
		slots = append(slots, models.TimeSlot{
			Date:             ts.Date,
			StartTime:        ts.StartTime,
			EndTime:          ts.EndTime,
			VolunteersNeeded: needed,
		})
	}

	// Клуб определяется до записи: без клуба запрос отклоняется.
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunity := models.Opportunity{
		ClubID:         clubID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         status,
		RequiredSkills: models.JoinList(models.SplitList(req.RequiredSkills)),
		Notes:          req.Notes,
		TimeSlots:      slots,
	}

	if err := storage.DB.Create(&opportunity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при создании возможности",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Ok(opportunity))
}

// ListOpportunitiesHandler обрабатывает запрос списка возможностей клуба
// @Summary		Список возможностей
// @Description	Возвращает возможности клуба пользователя со слотами и назначениями
// @Tags			opportunities
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Список возможностей"
// @Failure		400	{object}	response.ErrorResponse		"Клуб не определён (CLUB_NOT_RESOLVED)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/opportunities [get]
func ListOpportunitiesHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	var opportunities []models.Opportunity
	if err := storage.DB.
		Preload("TimeSlots.Assignments").
		Where("club_id = ?", clubID).
		Order("id ASC").
		Find(&opportunities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка загрузки возможностей",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Ok(opportunities))
}

// loadClubOpportunity загружает возможность по id с проверкой принадлежности клубу.
func loadClubOpportunity(c *gin.Context, clubID uint, preload bool) (*models.Opportunity, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Err("INVALID_OPPORTUNITY_ID", "Неверный идентификатор возможности"))
		return nil, false
	}

	query := storage.DB.Where("club_id = ?", clubID)
	if preload {
		query = query.Preload("TimeSlots.Assignments")
	}

	var opportunity models.Opportunity
	if err := query.First(&opportunity, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.Err("OPPORTUNITY_NOT_FOUND", "Возможность не найдена"))
		return nil, false
	}

	return &opportunity, true
}

// GetOpportunityHandler обрабатывает запрос одной возможности
// @Summary		Получение возможности
// @Description	Возвращает возможность со слотами и назначениями
// @Tags			opportunities
// @Produce		json
// @Param			id	path		string	true	"ID возможности"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Возможность"
// @Failure		404	{object}	response.ErrorResponse		"Возможность не найдена (OPPORTUNITY_NOT_FOUND)"
// @Router			/api/opportunities/{id} [get]
func GetOpportunityHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunity, ok := loadClubOpportunity(c, clubID, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, response.Ok(opportunity))
}

// TimeSlotUpdate адресует слот по id (слот "по умолчанию" не подразумевается).
type TimeSlotUpdate struct {
	ID               uint   `json:"id" binding:"required"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	VolunteersNeeded string `json:"volunteers_needed"`
}

type UpdateOpportunityRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	RequiredSkills *string          `json:"required_skills"`
	Notes          *string          `json:"notes"`
	Status         *string          `json:"status"`
	TimeSlots      []TimeSlotUpdate `json:"time_slots" binding:"dive"`
}

// UpdateOpportunityHandler обрабатывает обновление возможности
// @Summary		Обновление возможности
// @Description	Обновляет поля возможности и её слоты (слоты адресуются по id)
// @Tags			opportunities
// @Accept			json
// @Produce		json
// @Param			id			path		string						true	"ID возможности"
// @Param			opportunity	body		UpdateOpportunityRequest	true	"Изменяемые поля"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Обновлённая возможность"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR, INVALID_STATUS, INVALID_VOLUNTEERS_NEEDED, CAPACITY_BELOW_ASSIGNED)"
// @Failure		404	{object}	response.ErrorResponse		"Возможность или слот не найдены (OPPORTUNITY_NOT_FOUND, SLOT_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/opportunities/{id} [put]
func UpdateOpportunityHandler(c *gin.Context) {
	var req UpdateOpportunityRequest
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

	opportunity, ok := loadClubOpportunity(c, clubID, true)
	if !ok {
		return
	}

	if req.Title != nil {
		opportunity.Title = *req.Title
	}
	if req.Description != nil {
		opportunity.Description = *req.Description
	}
	if req.RequiredSkills != nil {
		opportunity.RequiredSkills = models.JoinList(models.SplitList(*req.RequiredSkills))
	}
	if req.Notes != nil {
		opportunity.Notes = *req.Notes
	}
	if req.Status != nil {
		if !isValidOpportunityStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, response.Err("INVALID_STATUS", "Неизвестный статус возможности"))
			return
		}
		opportunity.Status = *req.Status
	}

	for _, su := range req.TimeSlots {
		var slot *models.TimeSlot
		for i := range opportunity.TimeSlots {
			if opportunity.TimeSlots[i].ID == su.ID {
				slot = &opportunity.TimeSlots[i]
				break
			}
		}
		if slot == nil {
			c.JSON(http.StatusNotFound, response.Err("SLOT_NOT_FOUND", "Слот времени не найден в этой возможности"))
			return
		}

		if su.Date != "" {
			slot.Date = su.Date
		}
		if su.StartTime != "" {
			slot.StartTime = su.StartTime
		}
		if su.EndTime != "" {
			slot.EndTime = su.EndTime
		}
		if su.VolunteersNeeded != "" {
			needed, okParse := parseVolunteersNeeded(su.VolunteersNeeded)
			if !okParse {
				c.JSON(http.StatusBadRequest, response.Err("INVALID_VOLUNTEERS_NEEDED", "Лимит волонтёров должен быть положительным числом"))
				return
			}
			// Лимит нельзя опускать ниже уже назначенных волонтёров.
			if needed < len(slot.Assignments) {
				c.JSON(http.StatusBadRequest, response.Err("CAPACITY_BELOW_ASSIGNED", "Лимит волонтёров меньше числа уже назначенных"))
				return
			}
			slot.VolunteersNeeded = needed
		}
	}

	for i := range opportunity.TimeSlots {
		if err := storage.DB.Omit("Assignments").Save(&opportunity.TimeSlots[i]).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Error:   "Ошибка при обновлении слота",
				Details: err.Error(),
			})
			return
		}
	}

	if err := storage.DB.Omit("TimeSlots").Save(opportunity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при обновлении возможности",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Ok(opportunity))
}

// DeleteOpportunityHandler обрабатывает удаление возможности
// @Summary		Удаление возможности
// @Description	Удаляет возможность вместе со слотами и назначениями
// @Tags			opportunities
// @Produce		json
// @Param			id	path		string	true	"ID возможности"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Возможность удалена"
// @Failure		404	{object}	response.ErrorResponse		"Возможность не найдена (OPPORTUNITY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/opportunities/{id} [delete]
func DeleteOpportunityHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunity, ok := loadClubOpportunity(c, clubID, true)
	if !ok {
		return
	}

	// Сначала назначения, затем слоты, затем сама возможность.
	for _, slot := range opportunity.TimeSlots {
		if err := storage.DB.Where("time_slot_id = ?", slot.ID).Delete(&models.Assignment{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Error:   "Ошибка при удалении назначений",
				Details: err.Error(),
			})
			return
		}
	}
	if err := storage.DB.Where("opportunity_id = ?", opportunity.ID).Delete(&models.TimeSlot{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при удалении слотов",
			Details: err.Error(),
		})
		return
	}
	if err := storage.DB.Delete(opportunity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при удалении возможности",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Возможность удалена",
	})
}
