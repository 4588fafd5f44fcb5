// Package anthropic implements the generation backend on the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"roseglass/internal/backend"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel    = "claude-3-5-haiku-latest"
	streamMaxTokens = 4096
)

type Options struct {
	Token   string
	BaseURL string
	Model   string
}

type Client struct {
	api   *anthropic.Client
	model string
}

var _ backend.ModelClient = (*Client)(nil)

func New(opts Options) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, errors.New("missing token")
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(token),
	}
	if base := normalizeBaseURL(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	api := anthropic.NewClient(reqOpts...)

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{api: &api, model: model}, nil
}

func normalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/v1") {
		base = strings.TrimRight(strings.TrimSuffix(base, "/v1"), "/")
	}
	return base
}

func (c *Client) StreamGenerate(ctx context.Context, prompt string, onDelta func(string)) error {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: streamMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	stream := c.api.Messages.NewStreaming(ctx, params)
	for stream.Next() {
		event := stream.Current()
		switch v := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch d := v.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if d.Text != "" {
					onDelta(d.Text)
				}
			}
		case anthropic.MessageStopEvent:
			return nil
		}
	}
	return stream.Err()
}

// Classify has no native response-schema support on this API, so the schema
// is rendered into the prompt and the reply is required to be bare JSON.
func (c *Client) Classify(ctx context.Context, prompt string, schema backend.Schema) (json.RawMessage, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt + "\n\n" + schemaDirective(schema))),
		},
	}
	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	text := stripFences(extractText(msg.Content))
	if text == "" {
		return nil, errors.New("classification returned no text")
	}
	return json.RawMessage(text), nil
}

func schemaDirective(schema backend.Schema) string {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. Fields:")
	for _, name := range names {
		prop := schema.Properties[name]
		fmt.Fprintf(&b, "\n- %q (%s): %s", name, prop.Type, prop.Description)
		if len(prop.Enum) > 0 {
			fmt.Fprintf(&b, " One of: %s.", strings.Join(prop.Enum, ", "))
		}
	}
	if len(schema.Required) > 0 {
		fmt.Fprintf(&b, "\nRequired: %s.", strings.Join(schema.Required, ", "))
	}
	return b.String()
}

func extractText(blocks []anthropic.ContentBlockUnion) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(v.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
