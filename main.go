package main

import (
	"fmt"
	"log"
	"os"

	_ "clubhub/docs"
	"clubhub/internal/auth"
	"clubhub/internal/handlers"
	"clubhub/internal/models"
	"clubhub/internal/storage"
	"clubhub/internal/tasks"
	"clubhub/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Управление волонтёрами клуба
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(
		&models.Club{},
		&models.User{},
		&models.Opportunity{},
		&models.TimeSlot{},
		&models.Volunteer{},
		&models.Assignment{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	r.GET("/clubs", handlers.ListClubsHandler)

	api := r.Group("/api", auth.AuthMiddleware())
	{
		api.POST("/clubs", handlers.CreateClubHandler)

		api.GET("/opportunities", handlers.ListOpportunitiesHandler)
		api.POST("/opportunities", handlers.CreateOpportunityHandler)
		api.GET("/opportunities/:id", handlers.GetOpportunityHandler)
		api.PUT("/opportunities/:id", handlers.UpdateOpportunityHandler)
		api.DELETE("/opportunities/:id", handlers.DeleteOpportunityHandler)

		api.POST("/opportunities/:id/slots/:slot_id/assign", handlers.AssignVolunteerHandler)
		api.POST("/opportunities/:id/slots/:slot_id/unassign", handlers.UnassignVolunteerHandler)
		api.GET("/opportunities/:id/signups", handlers.ListOpportunitySignupsHandler)

		api.GET("/signups", handlers.ListSignupsHandler)
		api.GET("/signups/summary", handlers.GetSignupSummaryHandler)

		api.GET("/volunteers", handlers.ListVolunteersHandler)
		api.POST("/volunteers", handlers.CreateVolunteerHandler)
		api.PUT("/volunteers/:id", handlers.UpdateVolunteerHandler)
		api.DELETE("/volunteers/:id", handlers.DeleteVolunteerHandler)
	}

	// Канал уведомлений открыт без Bearer-токена: браузерный WebSocket
	// не передаёт заголовок Authorization.
	opportunities := r.Group("/api/opportunities")
	{
		opportunities.GET("/:id/ws", ws.OpportunityWebSocketHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
