// clix is the one-shot command line for operators: post documents, run tax
// reports, apportion landed costs, and transition tax records without going
// through the HTTP server.
//
// The caller identity comes from the environment: CLI_USER_ID and
// CLI_TENANT_ID scope every command; CLI_ELEVATED=1 enables cross-tenant
// aggregate mode.
package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ozavala/Clix-sub000/internal/adapters/cli"
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
	}

	svc := app.NewAppService(pool, asst, app.LoadPostingConfig(), log.Default())

	cli.Run(ctx, svc, callerFromEnv(), os.Args[1:])
}

func callerFromEnv() app.Caller {
	caller := app.Caller{Elevated: os.Getenv("CLI_ELEVATED") == "1"}

	if raw := os.Getenv("CLI_USER_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			caller.UserID = id
		}
	}
	if raw := os.Getenv("CLI_TENANT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Fatalf("CLI_TENANT_ID %q is not an integer", raw)
		}
		caller.TenantID = &id
	}
	if caller.TenantID == nil && !caller.Elevated {
		log.Fatal("set CLI_TENANT_ID (or CLI_ELEVATED=1 for cross-tenant aggregate mode)")
	}
	return caller
}
