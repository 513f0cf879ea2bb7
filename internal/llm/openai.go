package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lucasnoah/tfanalyzer/internal/config"
)

// systemPrompt encodes the extraction contract. The rules live here, in the
// prompt, rather than in post-processing: the model is the component that
// keeps every detail, strips line numbers, and drops warnings.
const systemPrompt = `You are an experienced software engineer whose task is to organize Terraform-related linter outputs.
You will get different linter outputs from the user (tflint, tfsec, terraform validate etc.).

Organize the issues into a JSON object with a single "issues" array, but keep every detail!
Remove ONLY the line numbers but keep everything else; don't remove any detail from the issue message.
DO NOT remove any information from the issues, keep every detail! You are only allowed to delete the line numbers, nothing else!
Each item in the "issues" array must be an object with exactly two fields: "file_name" and "full_issue_description".
Remove the warnings, only keep the errors in the final list.
Keep the issues in the order they appear in the input; never reorder, merge, or invent issues beyond what is literally present.

If there are no errors, return {"issues": []} - no placeholder text, nothing else.
Only return the JSON object in your response, nothing else.`

// OpenAIChain extracts findings with an OpenAI-compatible chat model,
// covering both the public OpenAI API and Azure OpenAI deployments.
type OpenAIChain struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIChain creates a chain against the public OpenAI API.
func NewOpenAIChain(apiKey, model string, temperature float32) *OpenAIChain {
	return newChainWithConfig(openai.DefaultConfig(apiKey), model, temperature)
}

// NewAzureChain creates a chain against an Azure OpenAI deployment.
func NewAzureChain(endpoint, deployment, apiKey, apiVersion string, temperature float32) *OpenAIChain {
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.APIVersion = apiVersion
	cfg.AzureModelMapperFunc = func(string) string { return deployment }
	return newChainWithConfig(cfg, deployment, temperature)
}

func newChainWithConfig(cfg openai.ClientConfig, model string, temperature float32) *OpenAIChain {
	return &OpenAIChain{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}
}

// NewChainFromSettings picks the OpenAI or Azure backend from settings.
// Settings are expected to have passed config.Validate already.
func NewChainFromSettings(s *config.Settings) (Chain, error) {
	switch {
	case s.HasAzure():
		return NewAzureChain(s.AzureEndpoint, s.AzureDeployment, s.AzureAPIKey, s.AzureAPIVersion, s.Temperature), nil
	case s.HasOpenAI():
		return NewOpenAIChain(s.OpenAIAPIKey, s.OpenAIModel, s.Temperature), nil
	default:
		return nil, errors.New("no LLM backend configured")
	}
}

// issuesEnvelope is the JSON object the model is prompted to return.
type issuesEnvelope struct {
	Issues []Issue `json:"issues"`
}

// Extract submits the diagnostic document and parses the model's structured
// response. Call failures and unparsable responses are returned as errors.
func (c *OpenAIChain) Extract(ctx context.Context, doc string) ([]Issue, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: doc},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	var env issuesEnvelope
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &env); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return env.Issues, nil
}
