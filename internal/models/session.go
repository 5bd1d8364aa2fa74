// Package models defines data structures for FinQuery
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single conversation entry. Messages are immutable once
// appended to a session.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall records a single tool invocation for transparency.
// The log is append-only; entries are never mutated after creation.
type ToolCall struct {
	Tool      string         `json:"tool"`
	Input     map[string]any `json:"input"`
	Output    any            `json:"output"`
	Timestamp time.Time      `json:"timestamp"`
}

// Session is the state record one pipeline run operates on. It is owned
// by exactly one run and never shared across concurrent queries.
type Session struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Query    string    `json:"query"`
	Symbols  []string  `json:"symbols"`

	LatestSnapshot   *Snapshot          `json:"latest_snapshot,omitempty"`
	LatestIndicators *IndicatorAnalysis `json:"latest_indicators,omitempty"`
	ToolCalls        []ToolCall         `json:"tool_calls"`

	// Optional portfolio context for personalized recommendations
	Holdings         map[string]float64 `json:"holdings,omitempty"`          // symbol -> share count
	TargetAllocation map[string]float64 `json:"target_allocation,omitempty"` // symbol -> target %

	FinalResponse string            `json:"final_response"`
	Verdict       *GuardrailVerdict `json:"verdict,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a session for a single query run.
func NewSession(query string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Query:     query,
		CreatedAt: time.Now(),
	}
	if query != "" {
		s.AddMessage(RoleUser, query)
	}
	return s
}

// AddMessage appends a message to the conversation history.
func (s *Session) AddMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// LogToolCall appends a tool invocation to the append-only log.
func (s *Session) LogToolCall(tool string, input map[string]any, output any) {
	s.ToolCalls = append(s.ToolCalls, ToolCall{
		Tool:      tool,
		Input:     input,
		Output:    output,
		Timestamp: time.Now(),
	})
}

// ConversationHistory formats the most recent messages for use as
// reasoning context.
func (s *Session) ConversationHistory(limit int) string {
	msgs := s.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = fmt.Sprintf("%s: %s", strings.ToUpper(string(m.Role)), m.Content)
	}
	return strings.Join(lines, "\n")
}

// CheckResult is the outcome of a single guardrail check
type CheckResult struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// GuardrailVerdict holds the outcome of the five guardrail checks run
// against a generated response. Score is the fraction of checks passed,
// so AllPassed is true exactly when Score == 1.0.
type GuardrailVerdict struct {
	Overconfidence  CheckResult `json:"overconfidence"`
	Disclaimer      CheckResult `json:"disclaimer"`
	ConfidenceScore CheckResult `json:"confidence_score"`
	Reasoning       CheckResult `json:"reasoning"`
	Hallucination   CheckResult `json:"hallucination"`
	AllPassed       bool        `json:"all_passed"`
	Score           float64     `json:"score"`
}

// NamedCheck pairs a check name with its result for iteration.
type NamedCheck struct {
	Name   string
	Result CheckResult
}

// Checks returns the five checks in evaluation order.
func (v *GuardrailVerdict) Checks() []NamedCheck {
	return []NamedCheck{
		{"overconfidence", v.Overconfidence},
		{"disclaimer", v.Disclaimer},
		{"confidence_score", v.ConfidenceScore},
		{"reasoning", v.Reasoning},
		{"hallucination", v.Hallucination},
	}
}
