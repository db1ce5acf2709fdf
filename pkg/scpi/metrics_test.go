package scpi

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	rec := NewRecorder().Reply("*OPC?", "1")
	tr := Instrument(rec, m)

	require.NoError(t, tr.Write(":STOP"))
	_, err := tr.Query("*OPC?")
	require.NoError(t, err)
	_, err = tr.Query(":WAV:DATA?")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("write")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("query")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("query")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Errors.WithLabelValues("write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BytesReceived))
	assert.Equal(t, 1, testutil.CollectAndCount(m.QueryDuration))

	require.NoError(t, tr.Close())
	assert.Equal(t, 1, rec.CloseCount())
}

func TestInstrumentNilMetrics(t *testing.T) {
	rec := NewRecorder()
	assert.Same(t, rec, Instrument(rec, nil))
}

func TestNewMetricsWithoutRegistry(t *testing.T) {
	m := NewMetrics(nil)
	m.Requests.WithLabelValues("write").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("write")))
}
