// verify-assistant is a smoke test for the OpenAI document drafting path.
// It sends one sample event and prints the structured draft.
//
// Usage: go run ./cmd/verify-assistant
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ozavala/Clix-sub000/internal/assistant"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	asst := assistant.NewAssistant(apiKey)
	ctx := context.Background()

	taxRates := `
- IVA 15% (15%)
- IVA 5% (5%)
- IVA 0% (0%)
`
	event := "Issued invoice F-00123 to Cliente Demo on 2026-08-20 for 500.00 plus standard IVA."

	fmt.Printf("DRAFTING: %s\n", event)
	draft, err := asst.DraftDocument(ctx, event, taxRates)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("\n--- DRAFT ---\n")
	fmt.Printf("Kind:        %s\n", draft.Kind)
	fmt.Printf("Reference:   %s\n", draft.ReferenceNumber)
	fmt.Printf("Date:        %s\n", draft.Date)
	fmt.Printf("Subtotal:    %s\n", draft.Subtotal)
	fmt.Printf("Tax:         %s (%s)\n", draft.TaxAmount, draft.TaxRateName)
	fmt.Printf("Total:       %s\n", draft.TotalAmount)
	fmt.Printf("Confidence:  %.2f\n", draft.Confidence)
	fmt.Printf("Reasoning:   %s\n", draft.Reasoning)
}
