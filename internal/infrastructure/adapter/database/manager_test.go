package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	coremocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/core"
)

func newTestLogger() *coremocks.MockLogger {
	logger := new(coremocks.MockLogger)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return logger
}

func unreachableConfig() *Config {
	return &Config{
		Driver:        "postgres",
		Host:          "127.0.0.1",
		Port:          1,
		Username:      "bridge",
		Password:      "bridge",
		Database:      "bridge",
		SSLMode:       "disable",
		QueryTimeout:  10 * time.Second,
		LogLevel:      "info",
		RetryAttempts: 2,
		RetryDelay:    1,
	}
}

func TestManager_WithTimeout_UsesTimeProvider(t *testing.T) {
	cfg := unreachableConfig()

	ctx := context.Background()
	wantCtx, wantCancel := context.WithCancel(ctx)
	defer wantCancel()

	tp := new(coremocks.MockTimeProvider)
	tp.On("WithTimeout", ctx, coreport.Duration(cfg.QueryTimeout)).
		Return(wantCtx, context.CancelFunc(wantCancel)).Once()

	manager := NewManager(cfg, newTestLogger(), tp)

	gotCtx, gotCancel := manager.WithTimeout(ctx)
	defer gotCancel()

	assert.Equal(t, wantCtx, gotCtx)
	tp.AssertExpectations(t)
}

func TestManager_Connect_PacesRetriesThroughTimeProvider(t *testing.T) {
	cfg := unreachableConfig()

	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(time.Now()).Maybe()
	tp.On("Since", mock.Anything).Return(coreport.Duration(0)).Maybe()
	// One sleep between the two failing attempts, no real waiting
	tp.On("Sleep", coreport.Duration(time.Second)).Once()

	manager := NewManager(cfg, newTestLogger(), tp)

	_, err := manager.Connect()

	assert.Error(t, err)
	tp.AssertExpectations(t)
}
