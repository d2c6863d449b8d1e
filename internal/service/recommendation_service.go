package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"healmymind_backend/internal/config"
	"healmymind_backend/internal/scoring"
	"healmymind_backend/pkg/logger"

	"github.com/gomarkdown/markdown"
	"go.uber.org/zap"
)

// FallbackAnalysis is stored when the model cannot be reached.
const FallbackAnalysis = "Unable to generate analysis at this time."

// Recommendation is the payload persisted on TestResult.Recommendations.
// swagger:model Recommendation
type Recommendation struct {
	Analysis     string    `json:"analysis"`
	AnalysisHTML string    `json:"analysisHtml,omitempty"`
	Confidence   bool      `json:"confidence"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// RecommendationInput describes the scored submission the analysis is about.
type RecommendationInput struct {
	TestType    scoring.InstrumentType
	Score       int
	Severity    scoring.Severity
	Description string
}

// Recommender produces an analysis for a scored submission. It never fails;
// problems are reported through a fallback Recommendation.
type Recommender interface {
	Recommend(ctx context.Context, in RecommendationInput) Recommendation
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// RecommendationService talks to an OpenAI compatible chat completion API.
type RecommendationService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewRecommendationService(cfg config.AIConfig) *RecommendationService {
	return &RecommendationService{config: cfg, client: &http.Client{}}
}

// UpdateConfig swaps the AI settings, used on config reload.
func (s *RecommendationService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

func (s *RecommendationService) settings() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *RecommendationService) Recommend(ctx context.Context, in RecommendationInput) Recommendation {
	cfg := s.settings()
	if !cfg.Enabled || cfg.BaseURL == "" {
		return fallbackRecommendation()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	content, finish, err := s.chat(ctx, cfg, buildPrompt(in))
	if err != nil {
		logger.Log.Error("Error getting AI analysis",
			zap.String("testType", string(in.TestType)),
			zap.Error(err),
		)
		return fallbackRecommendation()
	}

	return Recommendation{
		Analysis:     content,
		AnalysisHTML: string(markdown.ToHTML([]byte(content), nil, nil)),
		Confidence:   finish == "stop",
		GeneratedAt:  time.Now(),
	}
}

func buildPrompt(in RecommendationInput) string {
	return fmt.Sprintf(`Analyze the following mental health test results:
Test Type: %s
Score: %d
Severity: %s
Band: %s

Provide a comprehensive analysis and recommendations. Format the answer as Markdown.`,
		in.TestType.Label(), in.Score, in.Severity, in.Description)
}

func (s *RecommendationService) chat(ctx context.Context, cfg config.AIConfig, prompt string) (string, string, error) {
	reqBody := ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: "You are a mental health analysis assistant. You do not diagnose; you explain screening results and suggest next steps."},
			{Role: "user", Content: prompt},
		},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", err
	}
	if result.Error != nil {
		return "", "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", "", fmt.Errorf("AI returned no choices")
	}
	return result.Choices[0].Message.Content, result.Choices[0].FinishReason, nil
}

func fallbackRecommendation() Recommendation {
	return Recommendation{
		Analysis:    FallbackAnalysis,
		Confidence:  false,
		GeneratedAt: time.Now(),
	}
}
