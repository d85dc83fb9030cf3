package api

// Document is one uploaded file attached to a completion request. Order is
// preserved end to end: documents are sent to the provider exactly as the
// caller ordered them.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// CompletionRequest is the generic shape accepted by the proxy, independent
// of which vendor ends up serving it. Temperature and MaxTokens are pointers
// so an explicit zero can be told apart from "unset" (unset falls back to the
// adapter defaults).
type CompletionRequest struct {
	Prompt        string     `json:"prompt" binding:"required"`
	ModelID       string     `json:"modelId" binding:"required"`
	Temperature   *float64   `json:"temperature,omitempty" binding:"omitempty,gte=0,lte=1"`
	MaxTokens     *int       `json:"maxTokens,omitempty" binding:"omitempty,gt=0"`
	Documents     []Document `json:"documents,omitempty"`
	SystemMessage string     `json:"systemMessage,omitempty"`
}

// Usage reports token consumption for a single completion.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// CompletionResponse is the normalized result returned to the caller for
// both vendors.
type CompletionResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}
