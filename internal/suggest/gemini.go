package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	generativelanguage "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// DefaultTimeout bounds a single suggestion call.
	DefaultTimeout = 20 * time.Second

	cloudPlatformScope      = "https://www.googleapis.com/auth/cloud-platform"
	generativeLanguageScope = "https://www.googleapis.com/auth/generative-language"
)

const promptTemplate = `You are an AI assistant designed to help users create detailed task descriptions.

Based on the following summary of the task, generate a detailed and helpful description:
%s

Respond with a JSON object of the form {"suggestedDescription": "<description>"}.`

// GeminiConfig configures the Gemini suggester.
type GeminiConfig struct {
	// APIKey authenticates with an API key. When empty, Application
	// Default Credentials are used.
	APIKey  string
	Model   string
	Timeout time.Duration

	// Endpoint and HTTPClient override the API base URL and transport (for testing).
	Endpoint   string
	HTTPClient *http.Client
}

// Gemini suggests descriptions with the Google Generative Language API.
type Gemini struct {
	client  *generativelanguage.GenerativeClient
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini suggester.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		httpClient, err := google.DefaultClient(ctx, cloudPlatformScope, generativeLanguageScope)
		if err != nil {
			return nil, fmt.Errorf("no API key and no default credentials: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := generativelanguage.NewGenerativeRESTClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generative language client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Model returns the fully qualified model name.
func (g *Gemini) Model() string { return g.model }

// SuggestDescription asks the model for a description of summary.
func (g *Gemini) SuggestDescription(ctx context.Context, summary string) (string, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrSummaryRequired
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &generativelanguagepb.GenerateContentRequest{
		Model: g.model,
		Contents: []*generativelanguagepb.Content{{
			Role: "user",
			Parts: []*generativelanguagepb.Part{{
				Data: &generativelanguagepb.Part_Text{Text: fmt.Sprintf(promptTemplate, summary)},
			}},
		}},
		GenerationConfig: &generativelanguagepb.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := g.client.GenerateContent(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: request timed out", ErrUnavailable)
		}
		return "", wrapError(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrUnavailable)
	}
	return parseSuggestion(text), nil
}

// Close releases the client's connections.
func (g *Gemini) Close() error { return g.client.Close() }

func responseText(resp *generativelanguagepb.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			b.WriteString(p.GetText())
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	return ""
}

// parseSuggestion accepts the requested JSON object, a fenced JSON block,
// or plain text.
func parseSuggestion(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var out Response
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil && strings.TrimSpace(out.SuggestedDescription) != "" {
		return strings.TrimSpace(out.SuggestedDescription)
	}
	return strings.TrimSpace(text)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", ErrUnavailable)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: credentials rejected (run: taskday auth login)", ErrUnavailable)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: rate limited, try again later", ErrUnavailable)
		case http.StatusNotFound:
			return fmt.Errorf("%w: model not found", ErrUnavailable)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
