package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/controllers"
	"github.com/craftwl/whitelist-server/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	config.ConnectDB()
	if err := config.InitSettings(config.DB); err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		// read live so an admin config change applies without a restart
		AllowOriginFunc: func(origin string) bool {
			for _, allowed := range config.Settings.GetList(config.KeyAllowedOrigins) {
				if origin == allowed {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "API-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	routes.SetupRoutes(r)

	// stale responses are also swept lazily by read paths; the schedule just
	// bounds how long an abandoned attempt can sit unfinished
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 10m", func() {
		n, err := controllers.SweepExpiredResponses(config.DB, time.Now())
		if err != nil {
			log.Printf("sweep: %v", err)
			return
		}
		if n > 0 {
			log.Printf("sweep: expired %d stale responses", n)
		}
	}); err != nil {
		log.Fatalf("failed to schedule sweep: %v", err)
	}
	sweeper.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on port %s\n", port)
	r.Run(":" + port)
}
