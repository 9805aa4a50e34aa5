package observ

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock двигается на step при каждом вызове
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	idx := tm.Begin("parse")
	tm.End(idx, "42 nodes")
	tm.Measure("bind", func() {})
	tm.End(99, "ignored")

	r := tm.Report()
	require.Len(t, r.Phases, 2)
	assert.Equal(t, PhaseReport{Name: "parse", DurationMS: 1, Note: "42 nodes"}, r.Phases[0])
	assert.Equal(t, 1.0, r.Phases[1].DurationMS)
	assert.Equal(t, 2.0, r.TotalMS)
	assert.Contains(t, tm.Summary(), "// 42 nodes")
}

func TestReportAdd(t *testing.T) {
	var sum Report
	sum.Add(Report{TotalMS: 3, Phases: []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "lower", DurationMS: 2}}})
	sum.Add(Report{TotalMS: 4, Phases: []PhaseReport{{Name: "lower", DurationMS: 1}, {Name: "codegen", DurationMS: 3}}})
	assert.Equal(t, Report{TotalMS: 7, Phases: []PhaseReport{
		{Name: "parse", DurationMS: 1}, {Name: "lower", DurationMS: 3}, {Name: "codegen", DurationMS: 3},
	}}, sum)
}

func TestReportLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("timings", Report{TotalMS: 2, Phases: []PhaseReport{{Name: "parse", DurationMS: 2}}}).Msg("done")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, map[string]any{"parse": 2.0, "total": 2.0}, line["timings"])
}
