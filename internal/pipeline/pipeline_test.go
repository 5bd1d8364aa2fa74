package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finquery/internal/interfaces"
	"github.com/bobmcallan/finquery/internal/models"
)

// mockLLM implements ReasoningClient with a configurable generate function.
type mockLLM struct {
	generateFunc func(ctx context.Context, system, prompt string) (string, error)
}

func (m *mockLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	return m.generateFunc(ctx, system, prompt)
}

var _ interfaces.ReasoningClient = (*mockLLM)(nil)

// mockMarket implements MarketDataService over a fixed symbol set.
type mockMarket struct {
	snapshots map[string]*models.Snapshot
	calls     []string
}

func (m *mockMarket) GetSnapshot(_ context.Context, symbol, _ string) *models.Snapshot {
	m.calls = append(m.calls, symbol)
	return m.snapshots[symbol]
}

func (m *mockMarket) GetSnapshots(ctx context.Context, symbols []string, period string) map[string]*models.Snapshot {
	result := make(map[string]*models.Snapshot)
	for _, s := range symbols {
		if snap := m.GetSnapshot(ctx, s, period); snap != nil {
			result[s] = snap
		}
	}
	return result
}

var _ interfaces.MarketDataService = (*mockMarket)(nil)

func marketWith(symbols ...string) *mockMarket {
	m := &mockMarket{snapshots: make(map[string]*models.Snapshot)}
	for _, symbol := range symbols {
		bars := make([]models.Bar, 252)
		price := 100.0
		base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		for i := range bars {
			bars[i] = models.Bar{Date: base.AddDate(0, 0, i), Close: price, Volume: 1000000}
			price += 0.2
		}
		m.snapshots[symbol] = &models.Snapshot{
			Symbol:    symbol,
			Price:     price,
			ChangePct: 0.2,
			Date:      bars[len(bars)-1].Date,
			History:   bars,
		}
	}
	return m
}

const goodRecommendation = `AAPL shows bullish momentum with an RSI of 55 and volatility ` +
	`of 22%. If volatility spikes above 30%, consider protective puts. ` +
	`Confidence: 0.72. This is not financial advice.`

// llmFor answers the parse prompt with structured JSON and everything
// else with a canned recommendation.
func llmFor(parseJSON, recommendation string) *mockLLM {
	return &mockLLM{
		generateFunc: func(_ context.Context, system, _ string) (string, error) {
			if system == parseSystemPrompt {
				return parseJSON, nil
			}
			return recommendation, nil
		},
	}
}

func TestParseStructured(t *testing.T) {
	engine := NewEngine(marketWith("AAPL"), llmFor(`{"stocks": ["AAPL"], "query_type": "analysis"}`, ""))
	session := models.NewSession("Analyze AAPL please")

	engine.Parse(context.Background(), session)

	assert.Equal(t, []string{"AAPL"}, session.Symbols)
	require.NotEmpty(t, session.Messages)
	last := session.Messages[len(session.Messages)-1]
	assert.Equal(t, models.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "AAPL")
}

func TestParseFencedJSON(t *testing.T) {
	engine := NewEngine(marketWith("TSLA"), llmFor("```json\n{\"stocks\": [\"TSLA\", \"NVDA\"]}\n```", ""))
	session := models.NewSession("Compare TSLA and NVDA")

	engine.Parse(context.Background(), session)

	assert.Equal(t, []string{"TSLA", "NVDA"}, session.Symbols)
}

func TestParseFallbackOnModelError(t *testing.T) {
	llm := &mockLLM{
		generateFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	engine := NewEngine(marketWith("AAPL"), llm)
	session := models.NewSession("Should I hedge AAPL with options?")

	engine.Parse(context.Background(), session)

	assert.Equal(t, []string{"HEDGE", "AAPL"}, session.Symbols)
}

func TestParseFallbackOnBadJSON(t *testing.T) {
	engine := NewEngine(marketWith("MSFT"), llmFor("definitely not json", ""))
	session := models.NewSession("Is MSFT overbought?")

	engine.Parse(context.Background(), session)

	assert.Contains(t, session.Symbols, "MSFT")
}

func TestFetchNoSymbols(t *testing.T) {
	market := marketWith()
	engine := NewEngine(market, llmFor("{}", ""))
	session := models.NewSession("how is the market doing")

	engine.Fetch(context.Background(), session)

	require.NotEmpty(t, session.Messages)
	last := session.Messages[len(session.Messages)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Equal(t, noSymbolsMessage, last.Content)
	assert.Empty(t, market.calls)
	assert.Empty(t, session.ToolCalls)
}

func TestFetchCapsSymbols(t *testing.T) {
	market := marketWith("A1", "A2", "A3", "A4", "A5", "A6", "A7")
	engine := NewEngine(market, llmFor("{}", ""))
	session := models.NewSession("many symbols")
	session.Symbols = []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"}

	engine.Fetch(context.Background(), session)

	assert.Len(t, market.calls, 5)
	assert.Len(t, session.ToolCalls, 5)
}

func TestFetchLogsToolCalls(t *testing.T) {
	market := marketWith("AAPL")
	engine := NewEngine(market, llmFor("{}", ""))
	session := models.NewSession("analyze AAPL")
	session.Symbols = []string{"AAPL"}

	engine.Fetch(context.Background(), session)

	require.Len(t, session.ToolCalls, 1)
	call := session.ToolCalls[0]
	assert.Equal(t, "get_stock_data", call.Tool)
	assert.Equal(t, "AAPL", call.Input["symbol"])
	require.NotNil(t, session.LatestSnapshot)
	assert.Equal(t, "AAPL", session.LatestSnapshot.Symbol)
}

func TestFetchSkipsFailedSymbols(t *testing.T) {
	market := marketWith("AAPL")
	engine := NewEngine(market, llmFor("{}", ""))
	session := models.NewSession("analyze")
	session.Symbols = []string{"AAPL", "MISSING"}

	engine.Fetch(context.Background(), session)

	assert.Len(t, session.ToolCalls, 1)
	last := session.Messages[len(session.Messages)-1]
	assert.Contains(t, last.Content, "Fetched data for 1 symbol(s)")
}

func TestAnalyzeComputesIndicators(t *testing.T) {
	market := marketWith("AAPL")
	engine := NewEngine(market, llmFor("{}", ""))
	session := models.NewSession("analyze AAPL")
	session.Symbols = []string{"AAPL"}

	engine.Analyze(context.Background(), session)

	require.NotNil(t, session.LatestIndicators)
	assert.Equal(t, "AAPL", session.LatestIndicators.Symbol)
	assert.NotNil(t, session.LatestIndicators.RSI)
	require.Len(t, session.ToolCalls, 1)
	assert.Equal(t, "analyze_indicators", session.ToolCalls[0].Tool)
}

func TestAnalyzeNoteCountsAllSymbols(t *testing.T) {
	market := marketWith("A1", "A2", "A3", "A4", "A5", "A6", "A7")
	engine := NewEngine(market, llmFor("{}", ""))
	session := models.NewSession("many symbols")
	session.Symbols = []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"}

	engine.Analyze(context.Background(), session)

	// Analysis is capped at the symbol limit, but the note reports the
	// full resolved count
	assert.Len(t, session.ToolCalls, 5)
	last := session.Messages[len(session.Messages)-1]
	assert.Contains(t, last.Content, "Calculated indicators for 7 symbols")
}

func TestReasonFailure(t *testing.T) {
	llm := &mockLLM{
		generateFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	engine := NewEngine(marketWith(), llm)
	session := models.NewSession("analyze AAPL")

	engine.Reason(context.Background(), session)

	assert.Equal(t, reasoningErrorMessage, session.FinalResponse)
	last := session.Messages[len(session.Messages)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
}

func TestValidateRecordsVerdict(t *testing.T) {
	engine := NewEngine(marketWith(), llmFor("{}", ""))
	session := models.NewSession("analyze AAPL")
	session.LogToolCall("get_stock_data", map[string]any{"symbol": "AAPL"}, map[string]any{"price": 150.0})
	session.FinalResponse = goodRecommendation

	engine.Validate(context.Background(), session)

	require.NotNil(t, session.Verdict)
	assert.True(t, session.Verdict.AllPassed)
	assert.Equal(t, 1.0, session.Verdict.Score)
	last := session.Messages[len(session.Messages)-1]
	assert.Contains(t, last.Content, "Validation complete. Score: 1.00/1.0")
}

func TestRunEndToEnd(t *testing.T) {
	market := marketWith("AAPL")
	engine := NewEngine(market, llmFor(`{"stocks": ["AAPL"]}`, goodRecommendation))
	session := models.NewSession("Should I hedge AAPL with options given current volatility?")

	result := engine.Run(context.Background(), session)

	require.NotNil(t, result)
	assert.Equal(t, []string{"AAPL"}, result.Symbols)
	assert.Equal(t, goodRecommendation, result.FinalResponse)
	require.NotNil(t, result.Verdict)
	assert.True(t, result.Verdict.AllPassed)

	// Both fetch and analyze leave tool call records
	tools := make(map[string]int)
	for _, call := range result.ToolCalls {
		tools[call.Tool]++
	}
	assert.Equal(t, 1, tools["get_stock_data"])
	assert.Equal(t, 1, tools["analyze_indicators"])
}

func TestRunNoSymbolsStillValidates(t *testing.T) {
	engine := NewEngine(marketWith(), llmFor(`{"stocks": []}`, goodRecommendation))
	session := models.NewSession("how are things")

	result := engine.Run(context.Background(), session)

	require.NotNil(t, result.Verdict)
	assert.NotEmpty(t, result.FinalResponse)

	var sawNoSymbols bool
	for _, msg := range result.Messages {
		if msg.Content == noSymbolsMessage {
			sawNoSymbols = true
		}
	}
	assert.True(t, sawNoSymbols)
}

func TestReasoningContextIncludesPortfolio(t *testing.T) {
	var captured string
	llm := &mockLLM{
		generateFunc: func(_ context.Context, system, prompt string) (string, error) {
			if system == SystemPrompt {
				captured = prompt
			}
			return goodRecommendation, nil
		},
	}
	market := marketWith("AAPL", "GOOGL")
	engine := NewEngine(market, llm)

	session := models.NewSession("rebalance my portfolio")
	session.Holdings = map[string]float64{"AAPL": 10, "GOOGL": 5}
	session.TargetAllocation = map[string]float64{"AAPL": 50, "GOOGL": 50}

	engine.Reason(context.Background(), session)

	assert.Contains(t, captured, "Portfolio Context")
	assert.Contains(t, captured, "Total value")
}
