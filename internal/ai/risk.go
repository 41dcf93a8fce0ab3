package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vendorcover_backend/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// RiskAssessment - результат AI-оценки профиля вендора при подаче на модерацию
type RiskAssessment struct {
	Score   float64 // 0 (низкий риск) .. 100 (высокий риск)
	Summary string
}

type RiskAssessor interface {
	Assess(ctx context.Context, profile *models.VendorProfile) (*RiskAssessment, error)
}

// GeminiAssessor оценивает профиль через Gemini (langchaingo)
type GeminiAssessor struct {
	client llms.Model
}

func NewGeminiAssessor(ctx context.Context, apiKey, model string) (*GeminiAssessor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: api key is empty")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("ai: failed to init client: %w", err)
	}

	return &GeminiAssessor{client: client}, nil
}

func (a *GeminiAssessor) Assess(ctx context.Context, profile *models.VendorProfile) (*RiskAssessment, error) {
	prompt := buildRiskPrompt(profile)

	resp, err := llms.GenerateFromSinglePrompt(ctx, a.client, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai: generation failed: %w", err)
	}

	return parseRiskResponse(resp)
}

func buildRiskPrompt(profile *models.VendorProfile) string {
	var b strings.Builder
	b.WriteString("You are reviewing a vendor profile submitted to a service marketplace.\n")
	b.WriteString("Rate the risk that this profile is fraudulent or low quality.\n\n")
	fmt.Fprintf(&b, "Company name: %s\n", profile.CompanyName)
	fmt.Fprintf(&b, "Location: %s, %s\n", profile.City, profile.State)
	fmt.Fprintf(&b, "Bio: %s\n", profile.Bio)
	if len(profile.ServiceTypes) > 0 {
		fmt.Fprintf(&b, "Service types: %s\n", string(profile.ServiceTypes))
	}
	b.WriteString("\nRespond in exactly two lines:\n")
	b.WriteString("SCORE: <number 0-100>\n")
	b.WriteString("SUMMARY: <one sentence>\n")
	return b.String()
}

func parseRiskResponse(resp string) (*RiskAssessment, error) {
	assessment := &RiskAssessment{}
	found := false

	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "SCORE:"); ok {
			score, err := strconv.ParseFloat(strings.TrimSpace(after), 64)
			if err == nil {
				assessment.Score = score
				found = true
			}
		} else if after, ok := strings.CutPrefix(line, "SUMMARY:"); ok {
			assessment.Summary = strings.TrimSpace(after)
		}
	}

	if !found {
		return nil, fmt.Errorf("ai: response did not contain a score: %q", resp)
	}
	return assessment, nil
}
