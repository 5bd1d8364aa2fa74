// Package pipeline orchestrates the five-stage query workflow:
// parse, fetch, analyze, reason, validate. Stages always run in that
// order and each stage records its outcome on the session.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/finquery/internal/common"
	"github.com/bobmcallan/finquery/internal/guardrails"
	"github.com/bobmcallan/finquery/internal/interfaces"
	"github.com/bobmcallan/finquery/internal/models"
	"github.com/bobmcallan/finquery/internal/signals"
)

const (
	DefaultMaxSymbols = 5

	noSymbolsMessage      = "I couldn't identify any stock symbols in your query. Could you mention specific tickers?"
	reasoningErrorMessage = "I encountered an error while analyzing the data. Please try again."
)

// Engine runs the query pipeline. One engine serves many sessions; each
// session is owned by a single Run call.
type Engine struct {
	market     interfaces.MarketDataService
	llm        interfaces.ReasoningClient
	validator  *guardrails.Validator
	logger     *common.Logger
	maxSymbols int
	period     string
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSymbols caps how many symbols one query may fetch
func WithMaxSymbols(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSymbols = n
		}
	}
}

// WithPeriod sets the lookback period token used for fetches
func WithPeriod(period string) EngineOption {
	return func(e *Engine) {
		if period != "" {
			e.period = period
		}
	}
}

// NewEngine creates a pipeline engine.
func NewEngine(market interfaces.MarketDataService, llm interfaces.ReasoningClient, opts ...EngineOption) *Engine {
	e := &Engine{
		market:     market,
		llm:        llm,
		validator:  guardrails.NewValidator(),
		logger:     common.NewSilentLogger(),
		maxSymbols: DefaultMaxSymbols,
		period:     "1y",
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes all five stages against the session. The pipeline is
// total: upstream failures degrade the response but never abort the run,
// so the session always ends with a final response and a verdict.
func (e *Engine) Run(ctx context.Context, session *models.Session) *models.Session {
	e.logger.Info().Str("session", session.ID).Str("query", session.Query).Msg("Pipeline starting")

	e.Parse(ctx, session)
	e.Fetch(ctx, session)
	e.Analyze(ctx, session)
	e.Reason(ctx, session)
	e.Validate(ctx, session)

	e.logger.Info().Str("session", session.ID).Msg("Pipeline complete")
	return session
}

// parseResult is the structured output expected from the parse stage.
type parseResult struct {
	Stocks      []string `json:"stocks"`
	QueryType   string   `json:"query_type"`
	TimeHorizon string   `json:"time_horizon"`
	Intent      string   `json:"intent"`
}

// Parse extracts stock symbols and intent from the query. Structured
// extraction goes through the model; any failure falls back to the
// regex heuristic so the pipeline always proceeds with best-effort
// symbols.
func (e *Engine) Parse(ctx context.Context, session *models.Session) {
	if session.Query == "" {
		for i := len(session.Messages) - 1; i >= 0; i-- {
			if session.Messages[i].Role == models.RoleUser {
				session.Query = session.Messages[i].Content
				break
			}
		}
	}

	e.logger.Info().Str("query", session.Query).Msg("Parsing query")

	symbols, err := e.parseWithModel(ctx, session.Query)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Structured parse failed, using fallback extraction")
		symbols = ExtractSymbols(session.Query)
	}

	session.Symbols = symbols
	session.AddMessage(models.RoleSystem, fmt.Sprintf("Parsed query. Stocks to analyze: %v", symbols))
}

func (e *Engine) parseWithModel(ctx context.Context, query string) ([]string, error) {
	response, err := e.llm.Generate(ctx, parseSystemPrompt, parsePrompt(query))
	if err != nil {
		return nil, err
	}

	var parsed parseResult
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parse response: %w", err)
	}

	e.logger.Debug().
		Strs("symbols", parsed.Stocks).
		Str("query_type", parsed.QueryType).
		Str("time_horizon", parsed.TimeHorizon).
		Msg("Extracted query structure")

	return parsed.Stocks, nil
}

// Fetch retrieves snapshots for the parsed symbols, capped at the
// engine's symbol limit. Every successful fetch is logged as a tool
// call on the session.
func (e *Engine) Fetch(ctx context.Context, session *models.Session) {
	if len(session.Symbols) == 0 {
		e.logger.Warn().Msg("No symbols to fetch")
		session.AddMessage(models.RoleAssistant, noSymbolsMessage)
		return
	}

	symbols := session.Symbols
	if len(symbols) > e.maxSymbols {
		symbols = symbols[:e.maxSymbols]
	}

	e.logger.Info().Strs("symbols", symbols).Msg("Fetching market data")

	fetched := 0
	for _, symbol := range symbols {
		snapshot := e.market.GetSnapshot(ctx, symbol, e.period)
		if snapshot == nil {
			continue
		}

		session.LogToolCall("get_stock_data",
			map[string]any{"symbol": symbol, "period": e.period},
			map[string]any{
				"price":          snapshot.Price,
				"date":           snapshot.Date,
				"change_percent": snapshot.ChangePct,
			})
		session.LatestSnapshot = snapshot
		fetched++

		e.logger.Info().
			Str("symbol", symbol).
			Float64("price", snapshot.Price).
			Float64("change_pct", snapshot.ChangePct).
			Msg("Fetched snapshot")
	}

	session.AddMessage(models.RoleSystem, fmt.Sprintf("Fetched data for %d symbol(s)", fetched))
}

// Analyze computes technical indicators for each fetched symbol.
// Snapshots come from the service cache, so no new upstream calls are
// made here.
func (e *Engine) Analyze(ctx context.Context, session *models.Session) {
	e.logger.Info().Msg("Analyzing indicators")

	symbols := session.Symbols
	if len(symbols) > e.maxSymbols {
		symbols = symbols[:e.maxSymbols]
	}

	for _, symbol := range symbols {
		snapshot := e.market.GetSnapshot(ctx, symbol, e.period)
		if snapshot == nil {
			continue
		}

		analysis := signals.Analyze(snapshot)
		if analysis == nil {
			continue
		}

		session.LogToolCall("analyze_indicators",
			map[string]any{"symbol": symbol},
			analysis)
		session.LatestIndicators = analysis

		e.logger.Info().
			Str("symbol", symbol).
			Str("signal", string(analysis.Signal)).
			Msg("Computed indicators")
	}

	session.AddMessage(models.RoleSystem, fmt.Sprintf("Calculated indicators for %d symbols", len(session.Symbols)))
}

// Reason asks the model for a recommendation grounded in the fetched
// data. A generation failure produces a fixed apologetic response so
// validation still has something to check.
func (e *Engine) Reason(ctx context.Context, session *models.Session) {
	e.logger.Info().Msg("Reasoning over data")

	response, err := e.llm.Generate(ctx, SystemPrompt, e.reasoningContext(ctx, session))
	if err != nil {
		e.logger.Error().Err(err).Msg("Reasoning failed")
		session.FinalResponse = reasoningErrorMessage
		session.AddMessage(models.RoleAssistant, session.FinalResponse)
		return
	}

	session.FinalResponse = response
	session.AddMessage(models.RoleAssistant, response)
}

// reasoningContext assembles the prompt from recent tool calls, the
// conversation so far, and any portfolio context on the session.
func (e *Engine) reasoningContext(ctx context.Context, session *models.Session) string {
	calls := session.ToolCalls
	if len(calls) > 5 {
		calls = calls[len(calls)-5:]
	}

	lines := make([]string, 0, len(calls))
	for _, call := range calls {
		output, _ := json.Marshal(call.Output)
		lines = append(lines, fmt.Sprintf("Tool: %s, Output: %s", call.Tool, output))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n\n", session.Query)
	fmt.Fprintf(&b, "Recent Data Fetched:\n%s\n\n", strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "Conversation History (last 5 messages):\n%s\n", session.ConversationHistory(5))

	if summary := e.portfolioContext(ctx, session); summary != "" {
		fmt.Fprintf(&b, "\nPortfolio Context:\n%s\n", summary)
	}

	b.WriteString("\nBased on this data, provide a financial analysis and recommendation.\n")
	b.WriteString("Remember to include confidence scores, cite the data, and include appropriate disclaimers.\n")
	return b.String()
}

// portfolioContext summarizes holdings, allocation, and rebalance drift
// when the session carries portfolio data. Prices come from the service
// cache where possible.
func (e *Engine) portfolioContext(ctx context.Context, session *models.Session) string {
	if len(session.Holdings) == 0 {
		return ""
	}

	prices := make(map[string]float64, len(session.Holdings))
	for symbol := range session.Holdings {
		if snapshot := e.market.GetSnapshot(ctx, symbol, e.period); snapshot != nil {
			prices[symbol] = snapshot.Price
		}
	}

	total := models.PortfolioValue(session.Holdings, prices)
	allocation := models.Allocation(session.Holdings, prices)

	var b strings.Builder
	fmt.Fprintf(&b, "Total value: $%.2f\n", total)
	for symbol, pct := range allocation {
		fmt.Fprintf(&b, "%s: %.1f%% (%.0f shares)\n", symbol, pct, session.Holdings[symbol])
	}

	if len(session.TargetAllocation) > 0 {
		for _, suggestion := range models.SuggestRebalance(allocation, session.TargetAllocation, 5.0) {
			fmt.Fprintf(&b, "Rebalance: %s\n", suggestion)
		}
	}
	return b.String()
}

// Validate runs the guardrail suite against the final response and
// records the verdict on the session.
func (e *Engine) Validate(_ context.Context, session *models.Session) {
	e.logger.Info().Msg("Validating response")

	dataContext := make([]string, 0, len(session.ToolCalls))
	for _, call := range session.ToolCalls {
		output, _ := json.Marshal(call.Output)
		dataContext = append(dataContext, fmt.Sprintf("%s: %s", call.Tool, output))
	}

	verdict := e.validator.Validate(session.FinalResponse, dataContext)
	session.Verdict = verdict

	e.logger.Info().Float64("score", verdict.Score).Msg("Guardrail score")
	for _, check := range verdict.Checks() {
		e.logger.Debug().
			Str("check", check.Name).
			Bool("passed", check.Result.Passed).
			Str("reason", check.Result.Reason).
			Msg("Guardrail check")
	}

	if !verdict.AllPassed {
		for _, suggestion := range e.validator.SuggestImprovements(verdict) {
			e.logger.Warn().Str("suggestion", suggestion).Msg("Improvement suggested")
		}
	}

	session.AddMessage(models.RoleSystem, fmt.Sprintf("Validation complete. Score: %.2f/1.0", verdict.Score))
}
