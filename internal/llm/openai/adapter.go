package openai

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
	"github.com/terrascribe/llm-api/pkg/api"
)

func init() {
	llm.Register(api.ProviderOpenAI, NewAdapter)
}

const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7

	// Documents larger than this are cut before transmission so a single
	// upload cannot blow the context window.
	maxDocumentChars = 10000
	truncationMarker = "... [truncated]"

	systemMessage = "You are a research assistant for Earth-Science papers. " +
		"Answer the user's request directly and cite any provided document content where relevant."

	modelFamilyPrefix = "gpt-"
)

type Adapter struct {
	config llm.ProviderConfig
	client *http.Client
}

func NewAdapter(config llm.ProviderConfig) (llm.Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Name() api.ProviderName { return api.ProviderOpenAI }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// upstreamErrorResponse mirrors the standard OpenAI error shape.
type upstreamErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.config.APIKey,
	}
}

func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return api.VendorError(fmt.Sprintf("OpenAI API error: %v", err), err)
	}

	var vendorErr upstreamErrorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &vendorErr); jsonErr == nil && vendorErr.Error.Message != "" {
		return api.VendorError(
			fmt.Sprintf("OpenAI API error (status %d): %s", upstreamErr.StatusCode, vendorErr.Error.Message),
			err,
		)
	}
	return api.VendorError(
		fmt.Sprintf("OpenAI API error (status %d): %s", upstreamErr.StatusCode, string(upstreamErr.Body)),
		err,
	)
}

// truncate cuts content at maxDocumentChars and appends the marker, backing
// up to a rune boundary so a multi-byte character is never split.
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

func toVendorRequest(req *api.CompletionRequest) Request {
	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	system := req.SystemMessage
	if system == "" {
		system = systemMessage
	}

	messages := []Message{{Role: "system", Content: system}}
	if len(req.Documents) > 0 {
		var sb strings.Builder
		sb.WriteString("The user has uploaded the following documents for context:\n")
		for i, doc := range req.Documents {
			fmt.Fprintf(&sb, "Document %d: %s\n%s\n", i+1, doc.Name, truncate(doc.Content))
		}
		sb.WriteString("User request: ")
		sb.WriteString(req.Prompt)
		messages = append(messages, Message{Role: "user", Content: sb.String()})
	} else {
		messages = append(messages, Message{Role: "user", Content: req.Prompt})
	}

	return Request{
		Model:       req.ModelID,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

func (a *Adapter) Complete(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResponse, error) {
	vendorReq := toVendorRequest(req)

	var vendorResp Response
	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(a.config.BaseURL, "/"))
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, a.headers(), vendorReq, &vendorResp); err != nil {
		return nil, a.handleUpstreamError(err)
	}

	content := "No response content"
	if len(vendorResp.Choices) > 0 && vendorResp.Choices[0].Message.Content != "" {
		content = vendorResp.Choices[0].Message.Content
	}

	// OpenAI already reports the combined total; pass the counts through.
	return &api.CompletionResponse{
		Content: content,
		Usage: api.Usage{
			PromptTokens:     vendorResp.Usage.PromptTokens,
			CompletionTokens: vendorResp.Usage.CompletionTokens,
			TotalTokens:      vendorResp.Usage.TotalTokens,
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
		if !strings.HasPrefix(entry.ID, modelFamilyPrefix) || strings.Contains(entry.ID, "instruct") {
			continue
		}

		// The listing endpoint carries no pricing or limits, so both are
		// assigned from the model family.
		info := api.ModelInfo{
			ID:                  entry.ID,
			Provider:            api.ProviderOpenAI,
			Name:                entry.ID,
			MaxTokens:           4096,
			InputPricePerToken:  0.0015,
			OutputPricePerToken: 0.002,
		}
		if strings.Contains(entry.ID, "gpt-4") {
			info.MaxTokens = 8192
			info.InputPricePerToken = 0.03
			info.OutputPricePerToken = 0.06
		}
		models = append(models, info)
	}
	return models, nil
}
