package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// AssistantService turns a natural-language description of a sale or purchase
// into a structured document draft. Drafts are suggestions only: nothing is
// posted until a user reviews the draft and submits it through the normal
// posting endpoint.
type AssistantService interface {
	DraftDocument(ctx context.Context, text, taxRates string) (*DocumentDraft, error)
}

type Assistant struct {
	client *openai.Client
}

func NewAssistant(apiKey string) *Assistant {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Assistant{client: &client}
}

func (a *Assistant) DraftDocument(ctx context.Context, text, taxRates string) (*DocumentDraft, error) {
	prompt := fmt.Sprintf(`You are an accounting assistant for a multi-tenant ERP.
Interpret the business event below and produce a document draft for posting.
Rules:
1. kind is "sale" for revenue events (we issued an invoice) and "purchase" for expense events (we received a bill).
2. Amounts must be exact decimal strings (e.g. "100.00"); subtotal + tax_amount must equal total_amount.
3. If the event names a tax rate, pick the closest one from the list below and compute tax from the subtotal; otherwise set tax_amount to "0.00".
4. date is the document date in YYYY-MM-DD; use the date in the event text if one is given.
5. Provide a confidence score (0.0-1.0) and explain your reasoning.

Available tax rates:
%s

Event: %s`, taxRates, text)

	// The response schema is generated from the Go struct so the two can
	// never drift apart.
	schemaJSON, err := json.Marshal(draftSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal draft schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("decode draft schema: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "document_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A draft sale or purchase document ready for review"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var draft DocumentDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("parse document draft: %w", err)
	}

	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}
	return &draft, nil
}

func draftSchema() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v DocumentDraft
	return reflector.Reflect(v)
}
