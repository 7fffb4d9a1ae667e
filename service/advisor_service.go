package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyQuestion = errors.New("question is required")

// AdvisorContext is optional background the user shares with a question.
type AdvisorContext struct {
	Income        string `json:"income"`
	CreditHistory string `json:"creditHistory"`
	Employment    string `json:"employment"`
}

const advisorPromptTemplate = `You are a helpful loan advisor for Indian banking. User context:
- Income: ₹%s
- Credit History: %s
- Employment: %s

User question: %s

Provide helpful, accurate advice about loans and banking in India. Keep responses concise and actionable.
`

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}

func BuildAdvisorPrompt(question string, c AdvisorContext) string {
	return fmt.Sprintf(advisorPromptTemplate,
		orNotProvided(c.Income), orNotProvided(c.CreditHistory), orNotProvided(c.Employment), question)
}

// AdvisorService answers free-form loan questions. Unlike insights,
// generation failures are returned to the caller.
type AdvisorService struct {
	insights *InsightService
}

func NewAdvisorService(insights *InsightService) *AdvisorService {
	return &AdvisorService{insights: insights}
}

func (s *AdvisorService) Advise(ctx context.Context, question string, c AdvisorContext) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	opts := s.insights.Options()
	opts.MaxOutputTokens = advisorMaxOutputTokens

	text, err := s.insights.Generate(ctx, BuildAdvisorPrompt(question, c), opts)
	if err != nil {
		return "", err
	}
	if text == "" {
		return NoInsightText, nil
	}
	return text, nil
}
