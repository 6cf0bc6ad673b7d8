package logger

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LogRateLimit logs rate limiting events
func LogRateLimit(endpoint string, retryAfter int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":    endpoint,
		"retry_after": retryAfter,
		"action":      "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

// LogEnrichProgress logs enrichment progress for a target account
func LogEnrichProgress(target string, enriched, total, errors int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(enriched) / float64(total) * 100
	}

	GetLogger().WithFields(map[string]interface{}{
		"target":     target,
		"enriched":   enriched,
		"total":      total,
		"errors":     errors,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Info("Enrichment progress")
}

// LogStageStart logs when a pipeline stage starts
func LogStageStart(strategy, stage, target string) {
	GetLogger().WithFields(map[string]interface{}{
		"strategy": strategy,
		"stage":    stage,
		"target":   target,
	}).Info("Stage started")
}

// LogStageDone logs when a pipeline stage completes
func LogStageDone(strategy, stage, target string, units int) {
	GetLogger().WithFields(map[string]interface{}{
		"strategy": strategy,
		"stage":    stage,
		"target":   target,
		"units":    units,
	}).Info("Stage completed")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
