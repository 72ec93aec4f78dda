package main

import (
	"log"
	"os"

	"commentkit/internal/cache"
	"commentkit/internal/config"
	"commentkit/internal/db"
	"commentkit/internal/handlers"
	"commentkit/internal/router"
	"commentkit/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.FromEnv()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=commentkit port=5432 sslmode=disable"
	}

	conn, err := db.Init(dsn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Println("Database connection established")

	statsCache, err := cache.New(500)
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}

	notifier := services.NewNotifier()
	notifier.Subscribe(func(e services.Event) {
		log.Printf("event %s %s", e.Name, e.ID)
	})

	commentService := services.NewCommentService(conn, cfg, notifier)
	reactionService := services.NewReactionService(conn, notifier, statsCache)
	recaptcha := services.NewRecaptchaVerifier(cfg.Recaptcha)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("commentkit_session", store))

	commentHandler := handlers.NewCommentHandler(commentService, reactionService, recaptcha, cfg)
	reactionHandler := handlers.NewReactionHandler(commentService, reactionService, cfg)

	router.Register(r, cfg, commentHandler, reactionHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("commentkit server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
