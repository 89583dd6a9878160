package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"poemas-versos/config"
	"poemas-versos/models"
)

var (
	ErrQuotaExhausted = errors.New("daily generation quota exhausted")
	ErrInvalidRequest = errors.New("invalid generation request")
)

// PoemWriter 는 Pipeline 이 사용하는 생성기 기능이다. *Generator 가 구현한다.
type PoemWriter interface {
	GeneratePoem(ctx context.Context, req GenerateRequest) (*GeneratedPoem, *LLMRequestLog, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

type Limiter interface {
	WaitAndReserve(ctx context.Context) (bool, error)
}

type PoemStore interface {
	Insert(ctx context.Context, p *models.Poem) (primitive.ObjectID, error)
}

type ImageStore interface {
	SaveBytes(ctx context.Context, filename, contentType string, data []byte) (primitive.ObjectID, error)
}

type AILogStore interface {
	Insert(ctx context.Context, log models.AILog) (*mongo.InsertOneResult, error)
}

// PipelineRequest 는 poem.generation_requested 이벤트 한 건에 해당한다.
type PipelineRequest struct {
	RequestID   string
	Category    string
	Theme       string
	Language    string
	WithImage   bool
	RequestedBy string
}

// Pipeline: quota -> 텍스트 생성 -> (이미지 생성 + GridFS 저장) -> pending 시 저장 -> ai_logs
type Pipeline struct {
	limiter Limiter
	gen     PoemWriter
	poems   PoemStore
	images  ImageStore
	logs    AILogStore
}

func NewPipeline(limiter Limiter, gen PoemWriter, poems PoemStore, images ImageStore, logs AILogStore) *Pipeline {
	return &Pipeline{limiter: limiter, gen: gen, poems: poems, images: images, logs: logs}
}

// Run 은 시 한 편을 생성해 검수 대기(pending) 상태로 저장한다.
// 이미지 생성 실패는 경고만 남기고 시는 그대로 저장한다.
func (p *Pipeline) Run(ctx context.Context, req PipelineRequest) (*models.Poem, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}

	if p.limiter != nil {
		ok, err := p.limiter.WaitAndReserve(ctx)
		if err != nil {
			return nil, fmt.Errorf("wait for generation quota: %w", err)
		}
		if !ok {
			return nil, ErrQuotaExhausted
		}
	}

	requestedAt := time.Now()
	generated, llmLog, err := p.gen.GeneratePoem(ctx, GenerateRequest{
		Category: req.Category,
		Theme:    req.Theme,
		Language: req.Language,
	})
	if err != nil {
		p.saveLog(ctx, req.RequestID, nil, llmLog, requestedAt, err)
		return nil, fmt.Errorf("generate poem: %w", err)
	}

	poem := &models.Poem{
		Title:       generated.Title,
		Body:        generated.Body,
		Category:    req.Category,
		Tags:        generated.Tags,
		Status:      models.PoemStatusPending,
		Source:      models.PoemSourceAI,
		SubmittedBy: req.RequestedBy,
	}

	if req.WithImage && p.images != nil {
		if url, err := p.illustrate(ctx, req, generated); err != nil {
			config.Logger.Warnf("[generator] image generation failed (request_id=%s): %v", req.RequestID, err)
		} else {
			poem.ImageURL = url
		}
	}

	id, err := p.poems.Insert(ctx, poem)
	if err != nil {
		p.saveLog(ctx, req.RequestID, nil, llmLog, requestedAt, err)
		return nil, fmt.Errorf("insert generated poem: %w", err)
	}
	p.saveLog(ctx, req.RequestID, &id, llmLog, requestedAt, nil)

	config.Logger.Infof("[generator] poem generated (request_id=%s, poem_id=%s, category=%s)", req.RequestID, id.Hex(), req.Category)
	return poem, nil
}

func (p *Pipeline) illustrate(ctx context.Context, req PipelineRequest, generated *GeneratedPoem) (string, error) {
	data, mime, err := p.gen.GenerateImage(ctx, ImagePrompt(req.Category, generated))
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("ai-%s%s", req.RequestID, extensionFor(mime))
	fileID, err := p.images.SaveBytes(ctx, filename, mime, data)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return ImageURL(fileID), nil
}

// ImageURL 은 GridFS 파일을 제공하는 공개 경로다.
func ImageURL(id primitive.ObjectID) string {
	return "/api/v1/images/" + id.Hex()
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func (p *Pipeline) saveLog(ctx context.Context, requestID string, poemID *primitive.ObjectID, llmLog *LLMRequestLog, requestedAt time.Time, cause error) {
	if p.logs == nil {
		return
	}
	entry := models.AILog{
		PoemID:      poemID,
		RequestID:   requestID,
		RequestedAt: requestedAt,
		CompletedAt: time.Now(),
	}
	if llmLog != nil {
		entry.ModelName = llmLog.ModelName
		entry.ModelVersion = llmLog.ModelVersion
		entry.InputTokens = llmLog.TokenUsage.InputTokens
		entry.OutputTokens = llmLog.TokenUsage.OutputTokens
		entry.TotalTokens = llmLog.TokenUsage.TotalTokens
		entry.DurationMs = llmLog.LatencyMs
		entry.InputPrompt = llmLog.Prompt
		entry.OutputResponse = llmLog.Response
	}
	if cause != nil {
		msg := cause.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := p.logs.Insert(ctx, entry); err != nil {
		config.Logger.Errorf("[generator] failed to save ai log (request_id=%s): %v", requestID, err)
	}
}
