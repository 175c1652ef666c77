package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/promptline/promptline-api/internal/apperrors"
)

type recordedMetric struct {
	name  string
	value int64
	ms    time.Duration
	tags  map[string]string
}

type fakeSink struct {
	counts  []recordedMetric
	timings []recordedMetric
}

func (f *fakeSink) Count(name string, value int64, tags map[string]string) {
	f.counts = append(f.counts, recordedMetric{name: name, value: value, tags: tags})
}

func (f *fakeSink) Timing(name string, value time.Duration, tags map[string]string) {
	f.timings = append(f.timings, recordedMetric{name: name, ms: value, tags: tags})
}

func TestEmitJobLifecycleSuccess(t *testing.T) {
	sink := &fakeSink{}

	EmitJobLifecycle(sink, JobMetric{
		Transition: TransitionSubmit,
		Result:     ResultSuccess,
		Duration:   250 * time.Millisecond,
	})

	assert.Len(t, sink.counts, 1)
	assert.Equal(t, "job.transition", sink.counts[0].name)
	assert.Equal(t, map[string]string{
		"transition": "submit",
		"result":     "success",
	}, sink.counts[0].tags)

	assert.Len(t, sink.timings, 1)
	assert.Equal(t, "job.duration", sink.timings[0].name)
	assert.Equal(t, 250*time.Millisecond, sink.timings[0].ms)
}

func TestEmitJobLifecycleTagsErrorCode(t *testing.T) {
	sink := &fakeSink{}

	EmitJobLifecycle(sink, JobMetric{
		Transition: TransitionSubmit,
		Result:     ResultError,
		Err:        apperrors.New(apperrors.CodeSubmissionFailed, "queue unavailable"),
	})

	assert.Len(t, sink.counts, 1)
	assert.Equal(t, "submission_failed", sink.counts[0].tags["error_code"])
	assert.Empty(t, sink.timings)
}

func TestEmitJobLifecycleIncludesStatus(t *testing.T) {
	sink := &fakeSink{}

	EmitJobLifecycle(sink, JobMetric{
		Transition: TransitionReconcile,
		Result:     ResultSuccess,
		Status:     "succeeded",
	})

	assert.Len(t, sink.counts, 1)
	assert.Equal(t, "succeeded", sink.counts[0].tags["status"])
}

func TestEmitJobLifecycleNilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitJobLifecycle(nil, JobMetric{Transition: TransitionSubmit, Result: ResultSuccess})
	})
}
