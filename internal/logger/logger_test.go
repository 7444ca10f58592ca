package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), serviceName: "test"}, logs
}

func TestWithContextAddsRequestID(t *testing.T) {
	log, logs := observed()
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")

	log.WithContext(ctx).Info("handled", "status", 200)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-123" {
		t.Errorf("request_id = %v", fields["request_id"])
	}
	if fields["status"] != int64(200) {
		t.Errorf("status = %v (%T)", fields["status"], fields["status"])
	}
}

func TestWithContextWithoutRequestID(t *testing.T) {
	log, _ := observed()
	if got := log.WithContext(context.Background()); got != log {
		t.Error("expected the same logger when no request id is present")
	}
}

func TestWithFieldsKeepsRequestID(t *testing.T) {
	log, logs := observed()
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-9")

	log.WithContext(ctx).WithFields(map[string]interface{}{"method": "GET", "status": 404}).Info("Request handled")

	fields := logs.All()[0].ContextMap()
	if fields["request_id"] != "req-9" || fields["method"] != "GET" || fields["status"] != int64(404) {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestAuditMarksEntry(t *testing.T) {
	log, logs := observed()
	log.WithUser("u-1").Audit("Member removed", "team_id", "t-1")

	fields := logs.All()[0].ContextMap()
	if fields["audit"] != true || fields["user_id"] != "u-1" || fields["team_id"] != "t-1" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := NewLogger("teamtasks", Options{Env: "production", File: path})
	log.Info("hello file", "k", "v")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello file"`) {
		t.Errorf("log file missing JSON entry: %s", data)
	}
}
