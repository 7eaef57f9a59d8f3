package recorder

import (
	"errors"
	"testing"
	"time"

	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/stretchr/testify/require"
)

func sample(ms float64) plugin.Sample {
	return plugin.Sample{Backend: "postgresql", Timestamp: time.Now(), Duration: ms}
}

func TestSeries(t *testing.T) {
	s := NewSeries()
	require.Equal(t, 0, s.Len())
	require.Empty(t, s.Durations())

	s.Append(sample(3))
	s.Append(sample(1))
	s.Append(sample(2))

	require.Equal(t, 3, s.Len())
	require.Equal(t, []float64{3, 1, 2}, s.Durations())

	durations := s.Durations()
	durations[0] = 100
	require.Equal(t, 3.0, s.Samples()[0].Duration, "Durations must return a copy")
}

func TestRecorder_Record(t *testing.T) {
	t.Run("success appends and streams", func(t *testing.T) {
		out := &mockOutput{name: "csv"}
		r := New(logger, out)
		require.NoError(t, r.Open())

		r.Record(plugin.Result{Iteration: 1, Sample: sample(1.5)})
		r.Record(plugin.Result{Iteration: 2, Sample: sample(2.5)})

		require.Equal(t, []float64{1.5, 2.5}, r.Series().Durations())
		require.Len(t, out.sent, 2)
		require.Equal(t, 0, r.Failures())
	})

	t.Run("failure is counted and not appended", func(t *testing.T) {
		out := &mockOutput{name: "csv"}
		r := New(logger, out)

		r.Record(plugin.Result{Iteration: 1, Sample: sample(1)})
		r.Record(plugin.Result{
			Iteration: 2,
			Sample:    plugin.Sample{Backend: "postgresql"},
			Err:       plugin.NewError(plugin.KindConnection, "postgresql", "connect", errors.New("refused")),
		})

		require.Equal(t, 1, r.Series().Len())
		require.Len(t, out.sent, 1)
		require.Equal(t, 1, r.Failures())
	})

	t.Run("output error does not lose the sample", func(t *testing.T) {
		bad := &mockOutput{name: "influxdb", sendErr: errSink}
		good := &mockOutput{name: "csv"}
		r := New(logger, bad, good)

		r.Record(plugin.Result{Iteration: 1, Sample: sample(4)})

		require.Equal(t, 1, r.Series().Len())
		require.Len(t, good.sent, 1)
	})

	t.Run("no outputs still keeps the series", func(t *testing.T) {
		r := New(logger)
		require.NoError(t, r.Open())
		r.Record(plugin.Result{Iteration: 1, Sample: sample(7)})
		require.Equal(t, []float64{7}, r.Series().Durations())
		require.NoError(t, r.Close())
	})
}

func TestRecorder_OpenFailureStopsStartedOutputs(t *testing.T) {
	first := &mockOutput{name: "csv"}
	second := &mockOutput{name: "ws", startErr: errSink}
	third := &mockOutput{name: "influxdb"}
	r := New(logger, first, second, third)

	err := r.Open()
	require.ErrorIs(t, err, errSink)
	require.True(t, first.stopped)
	require.False(t, third.started)
}

func TestRecorder_CloseStopsAll(t *testing.T) {
	first := &mockOutput{name: "csv", stopErr: errSink}
	second := &mockOutput{name: "ws"}
	r := New(logger, first, second)

	err := r.Close()
	require.ErrorIs(t, err, errSink)
	require.True(t, first.stopped)
	require.True(t, second.stopped)
}
