package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"clubhub/internal/models"
	"clubhub/internal/response"
	"clubhub/internal/storage"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

const clubsCacheKey = "clubs_all"

// ListClubsHandler обрабатывает запрос списка клубов
// @Summary		Получение списка клубов
// @Description	Получает список всех клубов, кэширует результат в Redis
// @Tags			clubs
// @Produce		json
// @Success		200	{object}	response.SuccessResponse	"Список клубов"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/clubs [get]
func ListClubsHandler(c *gin.Context) {
	// Проверка кэша (Redis может быть не инициализирован — тогда идём в базу)
	if storage.RedisClient != nil {
		cached, err := storage.RedisClient.Get(ctx, clubsCacheKey).Result()
		if err == nil && cached != "" {
			var clubs []models.Club
			if err := json.Unmarshal([]byte(cached), &clubs); err == nil {
				c.JSON(http.StatusOK, response.Ok(clubs))
				return
			}
		}
	}

	var clubs []models.Club
	if err := storage.DB.Order("id ASC").Find(&clubs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка загрузки списка клубов",
			Details: err.Error(),
		})
		return
	}

	// Кэширование результата на 6 часов
	if storage.RedisClient != nil {
		if payload, err := json.Marshal(clubs); err == nil {
			storage.RedisClient.Set(ctx, clubsCacheKey, string(payload), time.Hour*6)
		}
	}

	c.JSON(http.StatusOK, response.Ok(clubs))
}

type CreateClubRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateClubHandler обрабатывает создание клуба
// @Summary		Создание клуба
// @Description	Создаёт клуб; создатель привязывается к клубу, если ещё не состоит в другом
// @Tags			clubs
// @Accept			json
// @Produce		json
// @Param			club	body		CreateClubRequest	true	"Данные клуба"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Созданный клуб"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR) или клуб уже существует (CLUB_EXISTS)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/clubs [post]
func CreateClubHandler(c *gin.Context) {
	var req CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Error:   "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var existing models.Club
	if err := storage.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, response.Err("CLUB_EXISTS", "Клуб с таким названием уже существует"))
		return
	}

	club := models.Club{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := storage.DB.Create(&club).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Ошибка при создании клуба",
			Details: err.Error(),
		})
		return
	}

	// Привязываем создателя к новому клубу, если он ещё не состоит в клубе.
	userID := c.GetUint("userID")
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err == nil && user.ClubID == nil {
		user.ClubID = &club.ID
		storage.DB.Save(&user)
	}

	// Сбрасываем кэш списка клубов.
	if storage.RedisClient != nil {
		storage.RedisClient.Del(ctx, clubsCacheKey)
	}

	c.JSON(http.StatusCreated, response.Ok(club))
}
