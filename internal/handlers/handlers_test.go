package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"clubhub/internal/models"
	"clubhub/internal/storage"
	"clubhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// AuthMiddlewareTest подставляет userID из заголовка X-Test-UserID вместо разбора JWT.
func AuthMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.Request.Header.Get("X-Test-UserID")
		if userIDStr == "" {
			// Значение по умолчанию
			c.Set("userID", uint(1))
		} else {
			id, err := strconv.Atoi(userIDStr)
			if err != nil {
				c.Set("userID", uint(1))
			} else {
				c.Set("userID", uint(id))
			}
		}
		c.Next()
	}
}

var hubOnce sync.Once

func setupTestServer(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)

	storage.ConnectTestingDatabase()

	if err := storage.DB.AutoMigrate(
		&models.Club{},
		&models.User{},
		&models.Opportunity{},
		&models.TimeSlot{},
		&models.Volunteer{},
		&models.Assignment{},
	); err != nil {
		t.Fatal("Ошибка при миграции... ", err.Error())
	}

	// Очищаем таблицы перед каждым тестом.
	for _, table := range []string{"assignments", "time_slots", "opportunities", "volunteers", "users", "clubs"} {
		storage.DB.Exec("DELETE FROM " + table)
	}

	hubOnce.Do(func() {
		go ws.HubInstance.Run()
	})

	r := gin.New()

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", Login)
		authGroup.POST("/register", Register)
		authGroup.POST("/refresh", RefreshToken)
	}

	r.GET("/clubs", ListClubsHandler)

	api := r.Group("/api", AuthMiddlewareTest())
	{
		api.POST("/clubs", CreateClubHandler)

		api.GET("/opportunities", ListOpportunitiesHandler)
		api.POST("/opportunities", CreateOpportunityHandler)
		api.GET("/opportunities/:id", GetOpportunityHandler)
		api.PUT("/opportunities/:id", UpdateOpportunityHandler)
		api.DELETE("/opportunities/:id", DeleteOpportunityHandler)

		api.POST("/opportunities/:id/slots/:slot_id/assign", AssignVolunteerHandler)
		api.POST("/opportunities/:id/slots/:slot_id/unassign", UnassignVolunteerHandler)
		api.GET("/opportunities/:id/signups", ListOpportunitySignupsHandler)

		api.GET("/signups", ListSignupsHandler)
		api.GET("/signups/summary", GetSignupSummaryHandler)

		api.GET("/volunteers", ListVolunteersHandler)
		api.POST("/volunteers", CreateVolunteerHandler)
		api.PUT("/volunteers/:id", UpdateVolunteerHandler)
		api.DELETE("/volunteers/:id", DeleteVolunteerHandler)
	}

	return httptest.NewServer(r)
}

// createTestClubUser создает клуб и пользователя, состоящего в нем.
func createTestClubUser(t *testing.T, name string) (models.Club, models.User) {
	club := models.Club{Name: name, Description: "Тестовый клуб"}
	err := storage.DB.Create(&club).Error
	assert.NoError(t, err, "Ошибка создания тестового клуба")

	user := models.User{
		Name:         "Иван",
		Surname:      "Иванов",
		Email:        fmt.Sprintf("ivan_%s@example.com", name),
		PasswordHash: "hashed123",
		ClubID:       &club.ID,
	}
	err = storage.DB.Create(&user).Error
	assert.NoError(t, err, "Ошибка создания тестового пользователя")

	return club, user
}

func createTestVolunteer(t *testing.T, clubID uint, name, email, status string) models.Volunteer {
	volunteer := models.Volunteer{
		ClubID:   clubID,
		Name:     name,
		Email:    email,
		Status:   status,
		IsActive: true,
	}
	err := storage.DB.Create(&volunteer).Error
	assert.NoError(t, err, "Ошибка создания тестового волонтёра")
	return volunteer
}

// doJSON выполняет запрос от имени пользователя и разбирает JSON-ответ.
func doJSON(t *testing.T, method, url string, userID uint, body any) (*http.Response, map[string]interface{}) {
	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err, "Ошибка сериализации тела запроса")
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	assert.NoError(t, err, "Ошибка создания запроса")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-UserID", fmt.Sprintf("%d", userID))

	res, err := http.DefaultClient.Do(req)
	assert.NoError(t, err, "Ошибка выполнения запроса")

	var parsed map[string]interface{}
	err = json.NewDecoder(res.Body).Decode(&parsed)
	res.Body.Close()
	assert.NoError(t, err, "Ошибка разбора JSON ответа")

	return res, parsed
}
