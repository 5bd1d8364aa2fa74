package models

import (
	"time"
)

// Bar represents a single trading day's price data
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Snapshot holds the latest quote for a symbol plus its daily close
// history, ordered oldest first with one bar per trading day.
type Snapshot struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Volume    int64     `json:"volume"`
	Date      time.Time `json:"date"`
	ChangePct float64   `json:"change_pct"` // percent change from prior close
	History   []Bar     `json:"history,omitempty"`
}

// Closes returns the close-price series from the attached history,
// oldest first.
func (s *Snapshot) Closes() []float64 {
	closes := make([]float64, len(s.History))
	for i, bar := range s.History {
		closes[i] = bar.Close
	}
	return closes
}

// SignalStrength is a discretized buy/sell recommendation label
type SignalStrength string

const (
	SignalStrongBuy  SignalStrength = "strong_buy"
	SignalBuy        SignalStrength = "buy"
	SignalNeutral    SignalStrength = "neutral"
	SignalSell       SignalStrength = "sell"
	SignalStrongSell SignalStrength = "strong_sell"
)

// IndicatorAnalysis holds the technical indicators computed for a symbol.
// Nil fields mean the history was too short for that indicator.
type IndicatorAnalysis struct {
	Symbol     string         `json:"symbol"`
	RSI        *float64       `json:"rsi,omitempty"`        // 0-100
	Volatility *float64       `json:"volatility,omitempty"` // stddev of daily returns, %
	Momentum   *float64       `json:"momentum,omitempty"`   // % change over period, signed
	MA50       *float64       `json:"ma_50,omitempty"`
	MA200      *float64       `json:"ma_200,omitempty"`
	Signal     SignalStrength `json:"signal"`
}
