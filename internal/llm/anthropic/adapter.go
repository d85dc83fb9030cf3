package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terrascribe/llm-api/internal/httpclient"
	"github.com/terrascribe/llm-api/internal/llm"
	"github.com/terrascribe/llm-api/internal/platform/logger"
	"github.com/terrascribe/llm-api/pkg/api"
	"go.uber.org/zap"
)

func init() {
	llm.Register(api.ProviderAnthropic, NewAdapter)
}

const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7

	// Documents larger than this are cut before transmission so a single
	// upload cannot blow the context window.
	maxDocumentChars = 10000
	truncationMarker = "... [truncated]"

	defaultSystemMessage = "You are a research assistant for Earth-Science papers. " +
		"Use the content of any documents provided in the conversation to inform your answer."

	modelFamilyPrefix = "claude-3"
)

type Adapter struct {
	config llm.ProviderConfig
	client *http.Client
}

func NewAdapter(config llm.ProviderConfig) (llm.Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Name() api.ProviderName { return api.ProviderAnthropic }

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type Response struct {
	ID         string         `json:"id"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type modelEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

// pricing is keyed by model id; ids missing from the table get
// defaultPricing.
var pricing = map[string]struct{ in, out float64 }{
	"claude-3-opus-20240229":   {0.0015, 0.075},
	"claude-3-sonnet-20240229": {0.0003, 0.0015},
	"claude-3-haiku-20240307":  {0.00025, 0.00125},
}

var defaultPricing = struct{ in, out float64 }{0.0003, 0.0015}

func (a *Adapter) headers() map[string]string {
	h := map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": "2023-06-01",
	}
	if v, ok := a.config.Config["version"]; ok {
		h["anthropic-version"] = v
	}
	return h
}

// truncate cuts content at maxDocumentChars and appends the marker. The cut
// backs up to a rune boundary so a multi-byte character is never split into
// invalid UTF-8. Content at or under the limit passes through untouched, so
// repeated processing of the same input is stable.
func truncate(content string) string {
	if len(content) <= maxDocumentChars {
		return content
	}
	cut := maxDocumentChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + truncationMarker
}

// buildUserBlocks assembles the single user turn. With documents present the
// turn is: intro block, one block per document in caller order, then the
// prompt block. A panic anywhere in block construction degrades to one
// generic block carrying the original prompt; a malformed upload must never
// fail the completion outright.
func buildUserBlocks(req *api.CompletionRequest) (blocks []ContentBlock) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Warn("document block construction failed, falling back",
				zap.Any("panic", r),
				zap.String("model", req.ModelID),
			)
			blocks = []ContentBlock{{
				Type: "text",
				Text: "The user has provided document content that could not be processed. " + req.Prompt,
			}}
		}
	}()

	if len(req.Documents) == 0 {
		return []ContentBlock{{Type: "text", Text: req.Prompt}}
	}

	blocks = make([]ContentBlock, 0, len(req.Documents)+2)
	blocks = append(blocks, ContentBlock{
		Type: "text",
		Text: "The user has uploaded the following documents for context:",
	})
	for i, doc := range req.Documents {
		blocks = append(blocks, ContentBlock{
			Type: "text",
			Text: fmt.Sprintf("Document %d: %s\n%s", i+1, doc.Name, truncate(doc.Content)),
		})
	}
	blocks = append(blocks, ContentBlock{
		Type: "text",
		Text: "User request: " + req.Prompt,
	})
	return blocks
}

func toVendorRequest(req *api.CompletionRequest) Request {
	system := req.SystemMessage
	if system == "" {
		system = defaultSystemMessage
	}

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	return Request{
		Model:       req.ModelID,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []Message{{
			Role:    "user",
			Content: buildUserBlocks(req),
		}},
	}
}

func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return api.VendorError(fmt.Sprintf("Anthropic API error: %v", err), err)
	}

	var vendorErr errorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &vendorErr); jsonErr == nil && vendorErr.Error.Message != "" {
		return api.VendorError(
			fmt.Sprintf("Anthropic API error (status %d): %s", upstreamErr.StatusCode, vendorErr.Error.Message),
			err,
		)
	}
	return api.VendorError(
		fmt.Sprintf("Anthropic API error (status %d): %s", upstreamErr.StatusCode, string(upstreamErr.Body)),
		err,
	)
}

func (a *Adapter) Complete(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResponse, error) {
	vendorReq := toVendorRequest(req)

	var vendorResp Response
	url := fmt.Sprintf("%s/messages", strings.TrimRight(a.config.BaseURL, "/"))
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, a.headers(), vendorReq, &vendorResp); err != nil {
		return nil, a.handleUpstreamError(err)
	}

	content := "No response content"
	if len(vendorResp.Content) > 0 && vendorResp.Content[0].Text != "" {
		content = vendorResp.Content[0].Text
	}

	// The vendor reports input and output separately; the combined total is
	// derived here.
	return &api.CompletionResponse{
		Content: content,
		Usage: api.Usage{
			PromptTokens:     vendorResp.Usage.InputTokens,
			CompletionTokens: vendorResp.Usage.OutputTokens,
			TotalTokens:      vendorResp.Usage.InputTokens + vendorResp.Usage.OutputTokens,
		},
	}, nil
}

func (a *Adapter) ListModels(ctx context.Context) ([]api.ModelInfo, error) {
	var vendorResp modelsResponse
	url := fmt.Sprintf("%s/models", strings.TrimRight(a.config.BaseURL, "/"))
	if err := httpclient.SendRequest(ctx, a.client, "GET", url, a.headers(), nil, &vendorResp); err != nil {
		return nil, a.handleUpstreamError(err)
	}

	var models []api.ModelInfo
	for _, entry := range vendorResp.Data {
		if !strings.HasPrefix(entry.ID, modelFamilyPrefix) {
			continue
		}

		name := entry.DisplayName
		if name == "" {
			name = displayName(entry.ID)
		}

		price, ok := pricing[entry.ID]
		if !ok {
			price = defaultPricing
		}

		models = append(models, api.ModelInfo{
			ID:                  entry.ID,
			Provider:            api.ProviderAnthropic,
			Name:                name,
			MaxTokens:           200000,
			InputPricePerToken:  price.in,
			OutputPricePerToken: price.out,
		})
	}
	return models, nil
}

// displayName title-cases the hyphen-separated tokens of a model id,
// e.g. "claude-3-sonnet-20240229" -> "Claude 3 Sonnet 20240229".
func displayName(id string) string {
	parts := strings.Split(id, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
