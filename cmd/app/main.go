package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"custody/cmd"
	pgadapter "custody/internal/adapters/out/postgres"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := openDatabase(configs)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	if err = pgadapter.AutoMigrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	batchSize, err := strconv.Atoi(goDotEnvVariable("PROJECTION_BATCH_SIZE"))
	if err != nil {
		log.Fatalf("Invalid PROJECTION_BATCH_SIZE")
	}

	return cmd.Config{
		HTTPPort:                     goDotEnvVariable("HTTP_PORT"),
		DBHost:                       goDotEnvVariable("DB_HOST"),
		DBPort:                       goDotEnvVariable("DB_PORT"),
		DBUser:                       goDotEnvVariable("DB_USER"),
		DBPassword:                   goDotEnvVariable("DB_PASSWORD"),
		DBName:                       goDotEnvVariable("DB_NAME"),
		DBSslMode:                    goDotEnvVariable("DB_SSLMODE"),
		ConservationTolerancePercent: goDotEnvVariable("CONSERVATION_TOLERANCE_PERCENT"),
		ProjectionBatchSize:          batchSize,
	}
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	app.CreateHTTPServer().RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
