package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"skatefed_backend/internal/database"
	"skatefed_backend/internal/router"
	"skatefed_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "skatefed_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "skatefed_password")
	dbName := utils.Getenv("DB_NAME", "skatefed_portal_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	db, err := database.Open(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := database.ApplySchema(db, dbSchemaPath); err != nil {
		utils.LogError(err, "Failed to apply database schema")
		log.Fatalf("Failed to apply database schema: %v", err)
	}
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	utils.SetSigningKey(utils.Getenv("JWT_SECRET", ""))

	cfg := router.Config{
		PaymentSecret: utils.Getenv("PAYMENT_SECRET", ""),
		MembershipFee: 500,
	}
	if feeStr := os.Getenv("MEMBERSHIP_FEE"); feeStr != "" {
		fee, err := utils.StrToInt64(feeStr)
		if err != nil {
			log.Fatalf("Invalid MEMBERSHIP_FEE: %v", err)
		}
		cfg.MembershipFee = fee
	}

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, db, cfg)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
