package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
	}{
		{"prod", "", false},
		{"local", "debug", false},
		{"docker", "warn", false},
		{"staging", "", true},
		{"local", "loud", true},
	}
	for _, tt := range tests {
		l, err := NewLogger(tt.env, tt.level)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewLogger(%q, %q): err = %v, wantErr %v", tt.env, tt.level, err, tt.wantErr)
		}
		if err == nil && l == nil {
			t.Errorf("NewLogger(%q, %q): nil logger", tt.env, tt.level)
		}
	}
}

func TestFor(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reqLogger := zap.New(core).With(zap.String("http_request_id", "abc"))
	fallbackCore, fallbackLogs := observer.New(zap.InfoLevel)
	fallback := zap.New(fallbackCore)

	For(context.Background(), fallback).Info("no request")
	if fallbackLogs.Len() != 1 {
		t.Fatalf("fallback entries: %d", fallbackLogs.Len())
	}

	ctx := ContextWithLogger(context.Background(), reqLogger)
	For(ctx, fallback).Info("in request")
	if logs.Len() != 1 || fallbackLogs.Len() != 1 {
		t.Fatalf("entries: request %d, fallback %d", logs.Len(), fallbackLogs.Len())
	}
	if got := logs.All()[0].ContextMap()["http_request_id"]; got != "abc" {
		t.Errorf("http_request_id: %v", got)
	}
}

func TestFromContext_Nop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
}
