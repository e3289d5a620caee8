package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "github.com/ozavala/Clix-sub000/internal/adapters/web"
	"github.com/ozavala/Clix-sub000/internal/app"
	"github.com/ozavala/Clix-sub000/internal/assistant"
	"github.com/ozavala/Clix-sub000/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var asst assistant.AssistantService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		asst = assistant.NewAssistant(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, assistant endpoints disabled")
	}

	svc := app.NewAppService(pool, asst, app.LoadPostingConfig(), log.Default())

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"), jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
