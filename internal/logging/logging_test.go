package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopmonkeyus/go-common/logger"
)

func TestZeroLogDiscards(t *testing.T) {
	var log Log
	log.Trace("trace %d", 1)
	log.Debug("debug %d", 1)
	log.Info("info %d", 1)
	log.Warn("warn %d", 1)
	log.Error("error %d", 1)
	if log.Logger() != nil {
		t.Fatalf("expected nil logger")
	}
}

func TestNewScopesPrefix(t *testing.T) {
	log := New(logger.NewTestLogger(), "[sqladmin]")
	if log.Logger() == nil {
		t.Fatalf("expected wrapped logger")
	}
	log.Info("listing %s", "users")
}

func TestGormAdapterToleratesNilLogger(t *testing.T) {
	adapter := NewGormLogAdapter(nil)
	if adapter.LogMode(0) != adapter {
		t.Fatalf("expected LogMode to return the adapter")
	}
	ctx := context.Background()
	adapter.Info(ctx, "replacing callback `gorm:create`")
	adapter.Warn(ctx, "slow query")
	adapter.Error(ctx, "failed")
	adapter.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	adapter.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
}
