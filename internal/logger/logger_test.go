package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
}

func (suite *LoggerTestSuite) TestNewLoggerWithLevel() {
	logger, err := NewLoggerWithLevel(zapcore.DebugLevel)
	suite.NoError(err)
	suite.True(logger.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	// Sync should not panic and should return nil for a nil inner logger
	err := logger.Sync()
	suite.NoError(err)
}

func (suite *LoggerTestSuite) TestNopLogger() {
	logger := NewNopLogger()
	suite.NotNil(logger.Logger)

	// These should not panic
	logger.Info("scoring", zap.String("timeframe", "M5"))
	logger.Warn("malformed weekly window token", zap.String("token", "Fri 25:00"))
	suite.NoError(logger.Sync())
}

func (suite *LoggerTestSuite) TestNamed() {
	logger := NewNopLogger().Named("tagger")
	suite.NotNil(logger.Logger)

	var nilLogger *Logger
	suite.NotNil(nilLogger.Named("tagger").Logger)
}

func (suite *LoggerTestSuite) TestWith() {
	logger := NewNopLogger().With(zap.String("timeframe", "H1"))
	suite.NotNil(logger.Logger)

	var nilLogger *Logger
	suite.NotNil(nilLogger.With().Logger)
}
