package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"poemas-versos/config"
)

var (
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is not set")
	// ErrRefused means the model declined the request (its "error" field was set).
	ErrRefused       = errors.New("model refused to write the poem")
	ErrEmptyResponse = errors.New("model returned an empty poem")
	ErrNoImage       = errors.New("model returned no image")
)

type GenerateRequest struct {
	Category string
	Theme    string
	Language string
}

type GeneratedPoem struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

type LLMRequestLog struct {
	Prompt       string     `json:"prompt"`
	Response     string     `json:"response"`
	LatencyMs    int64      `json:"latency_ms"`
	TokenUsage   TokenUsage `json:"token_usage"`
	ModelName    string     `json:"model_name"`
	ModelVersion string     `json:"model_version"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Generator 는 Gemini(텍스트) / Imagen(이미지) 호출을 감싼다.
type Generator struct {
	client     *genai.Client
	modelName  string
	imageModel string
	language   string
}

// NewGenerator 는 config.yaml 의 generation 설정과 GEMINI_API_KEY 로 클라이언트를 만든다.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig) (*Generator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Provider != "google" {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Generator{
		client:     client,
		modelName:  cfg.ModelName,
		imageModel: cfg.ImageModel,
		language:   cfg.Language,
	}, nil
}

func (g *Generator) ModelName() string { return g.modelName }

// GeneratePoem 은 카테고리/테마로 시 한 편을 생성한다.
// 실패해도 모델 응답이 있었다면 로그를 함께 돌려준다.
func (g *Generator) GeneratePoem(ctx context.Context, req GenerateRequest) (*GeneratedPoem, *LLMRequestLog, error) {
	startTime := time.Now()
	if req.Language == "" {
		req.Language = g.language
	}
	system := systemInstruction(req.Language)
	prompt := userPrompt(req)

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return nil, nil, err
	}
	if result == nil {
		return nil, nil, ErrEmptyResponse
	}

	text := result.Text()
	llmLog := &LLMRequestLog{
		Prompt:       fmt.Sprintf("%s\n\n%s", system, prompt),
		Response:     text,
		LatencyMs:    time.Since(startTime).Milliseconds(),
		ModelName:    g.modelName,
		ModelVersion: result.ModelVersion,
		GeneratedAt:  time.Now(),
	}
	if result.UsageMetadata != nil {
		llmLog.TokenUsage = TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}

	poem, err := ParsePoem(text)
	if err != nil {
		return nil, llmLog, err
	}
	return poem, llmLog, nil
}

// GenerateImage 는 Imagen 모델로 일러스트 한 장을 생성한다.
func (g *Generator) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	if g.imageModel == "" {
		return nil, "", fmt.Errorf("%w: generation.image_model is not configured", ErrNoImage)
	}
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		AspectRatio: "1:1",
	})
	if err != nil {
		return nil, "", err
	}
	if resp == nil {
		return nil, "", ErrNoImage
	}
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return gi.Image.ImageBytes, mime, nil
	}
	return nil, "", ErrNoImage
}

// ImagePrompt 는 생성된 시에 어울리는 일러스트 프롬프트를 만든다.
func ImagePrompt(category string, poem *GeneratedPoem) string {
	var b strings.Builder
	b.WriteString("A soft, romantic watercolor illustration without any text or letters. ")
	fmt.Fprintf(&b, "Mood: %s. ", category)
	if poem != nil && poem.Title != "" {
		fmt.Fprintf(&b, "Inspired by a poem titled %q.", poem.Title)
	}
	return b.String()
}
