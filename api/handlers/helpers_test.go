package handlers

// test doubles shared by the handler tests

type testLogger struct{}

func (testLogger) Debug(string, ...interface{})        {}
func (testLogger) Info(string, ...interface{})         {}
func (testLogger) Warn(string, ...interface{})         {}
func (testLogger) Error(string, error, ...interface{}) {}
func (testLogger) Fatal(string, error, ...interface{}) {}

type noopMetrics struct{}

func (noopMetrics) IncrementCounter(string, map[string]string)        {}
func (noopMetrics) RecordDuration(string, float64, map[string]string) {}
func (noopMetrics) SetGauge(string, float64, map[string]string)       {}
