package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"clubhub/internal/models"
	"clubhub/internal/response"
	"clubhub/internal/storage"

	"github.com/gin-gonic/gin"
)

type CreateVolunteerRequest struct {
	Name              string `json:"name" binding:"required"`
	Email             string `json:"email" binding:"required,email"`
	Phone             string `json:"phone"`
	ProfilePicture    string `json:"profile_picture"`
	Skills            string `json:"skills"`    // Навыки через запятую
	Interests         string `json:"interests"` // Интересы через запятую
	Weekdays          bool   `json:"weekdays"`
	Weekends          bool   `json:"weekends"`
	Evenings          bool   `json:"evenings"`
	Flexible          bool   `json:"flexible"`
	Status            string `json:"status"`
	ExperienceLevel   string `json:"experience_level"`
	YearsOfExperience int    `json:"years_of_experience"`
	Notes             string `json:"notes"`
	UserID            *uint  `json:"user_id"`
}

// isValidVolunteerStatus проверяет значение статуса волонтёра.
func isValidVolunteerStatus(s string) bool {
	switch s {
	case models.VolunteerStatusAvailable,
		models.VolunteerStatusBusy,
		models.VolunteerStatusOnAssignment,
		models.VolunteerStatusUnavailable:
		return true
	}
	return false
}

// matchesAvailability проверяет флаг доступности по имени фасета.
func matchesAvailability(v models.Volunteer, availability string) bool {
	switch availability {
	case "weekdays":
		return v.Weekdays
	case "weekends":
		return v.Weekends
	case "evenings":
		return v.Evenings
	case "flexible":
		return v.Flexible
	}
	return false
}

// FilterVolunteers фильтрует справочник волонтёров: фасеты объединяются по "И",
// поисковая строка совпадает по подстроке имени ИЛИ email без учёта регистра.
// Чистая функция без побочных эффектов — безопасна на каждое нажатие клавиши.
func FilterVolunteers(volunteers []models.Volunteer, searchTerm, statusFilter, availabilityFilter string) []models.Volunteer {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	result := make([]models.Volunteer, 0, len(volunteers))
	for _, v := range volunteers {
		if term != "" &&
			!strings.Contains(strings.ToLower(v.Name), term) &&
			!strings.Contains(strings.ToLower(v.Email), term) {
			continue
		}
		if statusFilter != "" && v.Status != statusFilter {
			continue
		}
		if availabilityFilter != "" && !matchesAvailability(v, availabilityFilter) {
			continue
		}
		result = append(result, v)
	}
	return result
}

// ListVolunteersHandler обрабатывает запрос справочника волонтёров
// @Summary		Справочник волонтёров
// @Description	Возвращает волонтёров клуба с фильтрами по поиску, статусу и доступности
// @Tags			volunteers
// @Produce		json
// @Param			search			query	string	false	"Подстрока имени или email"
// @Param			status			query	string	false	"Фильтр по статусу"
// @Param			availability	query	string	false	"Фильтр по доступности (weekdays|weekends|evenings|flexible)"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Список волонтёров"
// @Failure		400	{object}	response.ErrorResponse		"Клуб не определён (CLUB_NOT_RESOLVED)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/volunteers [get]
func ListVolunteersHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	var volunteers []models.Volunteer
	if err := storage.DB.
		Where("club_id = ?", clubID).
		Order("id ASC").
		Find(&volunteers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка загрузки волонтёров",
			Details: err.Error(),
		})
		return
	}

	filtered := FilterVolunteers(volunteers,
		c.Query("search"),
		c.Query("status"),
		c.Query("availability"),
	)

	c.JSON(http.StatusOK, response.Ok(filtered))
}

// CreateVolunteerHandler обрабатывает создание профиля волонтёра
// @Summary		Создание волонтёра
// @Description	Создаёт профиль волонтёра в клубе пользователя
// @Tags			volunteers
// @Accept			json
// @Produce		json
// @Param			volunteer	body		CreateVolunteerRequest	true	"Данные волонтёра"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Созданный волонтёр"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR, INVALID_STATUS, CLUB_NOT_RESOLVED)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/volunteers [post]
func CreateVolunteerHandler(c *gin.Context) {
	var req CreateVolunteerRequest
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
		status = models.VolunteerStatusAvailable
	}
	if !isValidVolunteerStatus(status) {
		c.JSON(http.StatusBadRequest, response.Err("INVALID_STATUS", "Неизвестный статус волонтёра"))
		return
	}

	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	volunteer := models.Volunteer{
		ClubID:            clubID,
		UserID:            req.UserID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		ProfilePicture:    req.ProfilePicture,
		Skills:            models.JoinList(models.SplitList(req.Skills)),
		Interests:         models.JoinList(models.SplitList(req.Interests)),
		Weekdays:          req.Weekdays,
		Weekends:          req.Weekends,
		Evenings:          req.Evenings,
		Flexible:          req.Flexible,
		Status:            status,
		IsActive:          true,
		ExperienceLevel:   req.ExperienceLevel,
		YearsOfExperience: req.YearsOfExperience,
		Notes:             req.Notes,
	}

	if err := storage.DB.Create(&volunteer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при создании волонтёра",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Ok(volunteer))
}

type UpdateVolunteerRequest struct {
	Name              *string `json:"name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	ProfilePicture    *string `json:"profile_picture"`
	Skills            *string `json:"skills"`
	Interests         *string `json:"interests"`
	Weekdays          *bool   `json:"weekdays"`
	Weekends          *bool   `json:"weekends"`
	Evenings          *bool   `json:"evenings"`
	Flexible          *bool   `json:"flexible"`
	Status            *string `json:"status"`
	IsActive          *bool   `json:"is_active"`
	ExperienceLevel   *string `json:"experience_level"`
	YearsOfExperience *int    `json:"years_of_experience"`
	Notes             *string `json:"notes"`
}

// UpdateVolunteerHandler обрабатывает обновление профиля волонтёра
// @Summary		Обновление волонтёра
// @Description	Обновляет поля профиля волонтёра клуба
// @Tags			volunteers
// @Accept			json
// @Produce		json
// @Param			id			path		string					true	"ID волонтёра"
// @Param			volunteer	body		UpdateVolunteerRequest	true	"Изменяемые поля"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Обновлённый волонтёр"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR, INVALID_STATUS, INVALID_VOLUNTEER_ID, CLUB_NOT_RESOLVED)"
// @Failure		404	{object}	response.ErrorResponse		"Волонтёр не найден (VOLUNTEER_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/volunteers/{id} [put]
func UpdateVolunteerHandler(c *gin.Context) {
	var req UpdateVolunteerRequest
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

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Err("INVALID_VOLUNTEER_ID", "Неверный идентификатор волонтёра"))
		return
	}

	var volunteer models.Volunteer
	if err := storage.DB.Where("club_id = ?", clubID).First(&volunteer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.Err("VOLUNTEER_NOT_FOUND", "Волонтёр не найден"))
		return
	}

	if req.Name != nil {
		volunteer.Name = *req.Name
	}
	if req.Email != nil {
		volunteer.Email = *req.Email
	}
	if req.Phone != nil {
		volunteer.Phone = *req.Phone
	}
	if req.ProfilePicture != nil {
		volunteer.ProfilePicture = *req.ProfilePicture
	}
	if req.Skills != nil {
		volunteer.Skills = models.JoinList(models.SplitList(*req.Skills))
	}
	if req.Interests != nil {
		volunteer.Interests = models.JoinList(models.SplitList(*req.Interests))
	}
	if req.Weekdays != nil {
		volunteer.Weekdays = *req.Weekdays
	}
	if req.Weekends != nil {
		volunteer.Weekends = *req.Weekends
	}
	if req.Evenings != nil {
		volunteer.Evenings = *req.Evenings
	}
	if req.Flexible != nil {
		volunteer.Flexible = *req.Flexible
	}
	if req.Status != nil {
		if !isValidVolunteerStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, response.Err("INVALID_STATUS", "Неизвестный статус волонтёра"))
			return
		}
		volunteer.Status = *req.Status
	}
	if req.IsActive != nil {
		volunteer.IsActive = *req.IsActive
	}
	if req.ExperienceLevel != nil {
		volunteer.ExperienceLevel = *req.ExperienceLevel
	}
	if req.YearsOfExperience != nil {
		volunteer.YearsOfExperience = *req.YearsOfExperience
	}
	if req.Notes != nil {
		volunteer.Notes = *req.Notes
	}

	if err := storage.DB.Save(&volunteer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при обновлении волонтёра",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Ok(volunteer))
}

// DeleteVolunteerHandler обрабатывает удаление профиля волонтёра
// @Summary		Удаление волонтёра
// @Description	Удаляет профиль волонтёра клуба; его назначения остаются и отображаются в записях как ожидающие, слот освобождается через unassign
// @Tags			volunteers
// @Produce		json
// @Param			id	path	string	true	"ID волонтёра"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Волонтёр удалён"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (INVALID_VOLUNTEER_ID, CLUB_NOT_RESOLVED)"
// @Failure		404	{object}	response.ErrorResponse		"Волонтёр не найден (VOLUNTEER_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/volunteers/{id} [delete]
func DeleteVolunteerHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Err("INVALID_VOLUNTEER_ID", "Неверный идентификатор волонтёра"))
		return
	}

	var volunteer models.Volunteer
	if err := storage.DB.Where("club_id = ?", clubID).First(&volunteer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.Err("VOLUNTEER_NOT_FOUND", "Волонтёр не найден"))
		return
	}

	// Назначения волонтёра не трогаем: в записях они остаются как ожидающие,
	// со слота их снимает unassign.
	if err := storage.DB.Delete(&volunteer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при удалении волонтёра",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Волонтёр удалён",
	})
}
