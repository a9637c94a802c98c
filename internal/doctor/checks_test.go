package doctor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCheck is a test implementation of Check.
type mockCheck struct {
	name     string
	category string
	result   CheckResult
}

func (m *mockCheck) Name() string     { return m.name }
func (m *mockCheck) Category() string { return m.category }
func (m *mockCheck) Run() CheckResult { return m.result }

func TestCheckStatusString(t *testing.T) {
	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{StatusPass, "pass"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
		{StatusSkip, "skip"},
		{CheckStatus(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.String())
		})
	}
}

func TestCheckResultJSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "daemon", Status: StatusWarn, Message: "slow"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"daemon","status":"warn","message":"slow"}`, string(data))
}

func TestRunAllKeepsOrder(t *testing.T) {
	checks := []Check{
		&mockCheck{name: "a", category: "CONFIG", result: CheckResult{Name: "a", Status: StatusPass}},
		&mockCheck{name: "b", category: "DAEMON", result: CheckResult{Name: "b", Status: StatusFail}},
		&mockCheck{name: "c", category: "CONFIG", result: CheckResult{Name: "c", Status: StatusWarn}},
	}

	for name, run := range map[string]func([]Check) []CheckResult{
		"sequential": RunAll,
		"parallel":   RunAllParallel,
	} {
		t.Run(name, func(t *testing.T) {
			results := run(checks)
			require.Len(t, results, 3)
			assert.Equal(t, "a", results[0].Name)
			assert.Equal(t, "b", results[1].Name)
			assert.Equal(t, "c", results[2].Name)
		})
	}

	assert.Equal(t, map[string][]int{"CONFIG": {0, 2}, "DAEMON": {1}}, GroupByCategory(checks))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		statuses []CheckStatus
		summary  string
		failures bool
		issues   bool
	}{
		{"all pass", []CheckStatus{StatusPass, StatusSkip}, "Everything looks good", false, false},
		{"one warning", []CheckStatus{StatusPass, StatusWarn}, "1 issue found", false, true},
		{"mixed", []CheckStatus{StatusFail, StatusWarn, StatusFail}, "3 issues found", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]CheckResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i] = CheckResult{Status: s}
			}
			assert.Equal(t, tt.summary, Summary(results))
			assert.Equal(t, tt.failures, HasFailures(results))
			assert.Equal(t, tt.issues, HasIssues(results))
		})
	}
}
