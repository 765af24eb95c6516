package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func captureJSON(t *testing.T, level string, detailed bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := InitWithConfig(LogConfig{Level: level, Format: "json", DetailedLogging: detailed, Output: &buf}); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("Expected one JSON record, got %q: %v", buf.String(), err)
	}
	return rec
}

func TestRequestIDIsLogged(t *testing.T) {
	buf := captureJSON(t, "INFO", false)
	ctx := WithRequestID(context.Background(), "req-123")

	Info(ctx, "hello", "symbol", "ACME")

	rec := decodeLine(t, buf)
	if rec["request_id"] != "req-123" {
		t.Errorf("Expected request_id req-123, got %v", rec["request_id"])
	}
	if rec["symbol"] != "ACME" {
		t.Errorf("Expected symbol ACME, got %v", rec["symbol"])
	}
}

func TestDebugNeedsDetailedLogging(t *testing.T) {
	buf := captureJSON(t, "DEBUG", false)
	Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no debug output without detailed logging, got %q", buf.String())
	}

	buf = captureJSON(t, "INFO", true)
	Debug(context.Background(), "shown")
	rec := decodeLine(t, buf)
	if _, ok := rec["source"]; !ok {
		t.Error("Expected source attribute with detailed logging")
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureJSON(t, "WARN", false)
	Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected INFO to be filtered at WARN, got %q", buf.String())
	}
	ErrorWithErr(context.Background(), "failed", errors.New("boom"))
	rec := decodeLine(t, buf)
	if rec["error"] != "boom" {
		t.Errorf("Expected error boom, got %v", rec["error"])
	}
}

func TestDecisionAndRiskEvents(t *testing.T) {
	buf := captureJSON(t, "INFO", false)
	Decision(context.Background(), "ACME", "Buy", 85, 72.5, "Strong overall score supports bullish position")
	rec := decodeLine(t, buf)
	if rec["type"] != "DECISION" || rec["recommendation"] != "Buy" {
		t.Errorf("Expected DECISION Buy record, got %v", rec)
	}

	buf.Reset()
	Risk(context.Background(), "ACME", "High", "risk_score", 55.0)
	rec = decodeLine(t, buf)
	if rec["level"] != "WARN" || rec["risk_level"] != "High" {
		t.Errorf("Expected WARN risk record, got %v", rec)
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("debug").String() != "DEBUG" {
		t.Error("Expected case-insensitive DEBUG")
	}
	if parseLogLevel("nonsense").String() != "INFO" {
		t.Error("Expected INFO fallback")
	}
}
