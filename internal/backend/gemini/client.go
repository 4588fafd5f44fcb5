// Package gemini implements the generation backend on the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"roseglass/internal/backend"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

type Options struct {
	APIKey string
	Model  string
}

type Client struct {
	api   *genai.Client
	model string
}

var _ backend.ModelClient = (*Client)(nil)

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{api: api, model: model}, nil
}

func (c *Client) StreamGenerate(ctx context.Context, prompt string, onDelta func(string)) error {
	for resp, err := range c.api.Models.GenerateContentStream(ctx, c.model, genai.Text(prompt), nil) {
		if err != nil {
			return err
		}
		if text := resp.Text(); text != "" {
			onDelta(text)
		}
	}
	return nil
}

func (c *Client) Classify(ctx context.Context, prompt string, schema backend.Schema) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toSchema(schema),
	}
	resp, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errors.New("classification returned no text")
	}
	return json.RawMessage(text), nil
}

func toSchema(s backend.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{},
		Required:   s.Required,
	}
	for name, prop := range s.Properties {
		out.Properties[name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: prop.Description,
			Enum:        prop.Enum,
		}
	}
	return out
}
