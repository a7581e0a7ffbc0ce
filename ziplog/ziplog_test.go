package ziplog_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sciflow/gridtransform/kernel"
	"github.com/sciflow/gridtransform/ziplog"
)

type ZiplogSuite struct {
	suite.Suite
}

func (s *ZiplogSuite) newObserved() (*ziplog.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return ziplog.New(zap.New(core)), logs
}

func (s *ZiplogSuite) TestWarnPairsKeyValues() {
	log, logs := s.newObserved()
	log.Warn("transform: insufficient input samples", "group", "height", "count", 1)

	require.Equal(s.T(), 1, logs.Len())
	entry := logs.All()[0]
	s.Equal("transform: insufficient input samples", entry.Message)
	fields := entry.ContextMap()
	s.Equal("height", fields["group"])
	s.Equal(int64(1), fields["count"])
}

func (s *ZiplogSuite) TestWarnWithOddTrailingKeyUsesExtra() {
	log, logs := s.newObserved()
	log.Warn("caracena: all input stations bad", "lonely")

	fields := logs.All()[0].ContextMap()
	s.Equal("lonely", fields["extra"])
}

func (s *ZiplogSuite) TestWarnWithNonStringKeyFallsBackToField() {
	log, logs := s.newObserved()
	log.Warn("msg", 7, "value")

	fields := logs.All()[0].ContextMap()
	s.Equal("value", fields["field"])
}

// TestLoggerSatisfiesKernelLogger pins ziplog.Logger to kernel.Logger's
// structural shape, the way transform.Options.Log and kernel.Call.Log
// actually consume it.
func (s *ZiplogSuite) TestLoggerSatisfiesKernelLogger() {
	var _ kernel.Logger = ziplog.NewNop()
}

func (s *ZiplogSuite) TestNewDevelopmentBuildsUsableLogger() {
	log, err := ziplog.NewDevelopment()
	require.NoError(s.T(), err)
	require.NotNil(s.T(), log)
	log.Warn("smoke test")
	_ = log.Sync() // stdout sync commonly errors under test runners; only need it to not panic
}

func TestZiplogSuite(t *testing.T) {
	suite.Run(t, new(ZiplogSuite))
}
