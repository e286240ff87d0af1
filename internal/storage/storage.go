package storage

import (
	"fmt"
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Ошибка подключения к базе данных:", err)
	}

	DB = db
	fmt.Println("Подключение к базе данных успешно!")
}

// RedisClient может быть nil, если Redis не инициализирован (например, в тестах) —
// кэширующие обработчики обязаны это учитывать.
var RedisClient *redis.Client

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}

// ConnectTestingDatabase поднимает общую in-memory базу SQLite для тестов,
// чтобы не требовать отдельный тестовый Postgres.
func ConnectTestingDatabase() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatal("Ошибка подключения к тестовой базе данных:", err)
	}

	// SQLite с shared cache не терпит параллельных пишущих соединений,
	// поэтому пул ограничен одним.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Ошибка доступа к пулу тестовой базы данных:", err)
	}
	sqlDB.SetMaxOpenConns(1)

	DB = db
}
