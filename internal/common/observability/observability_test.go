package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNilObservabilityIsSafe(t *testing.T) {
	var o *Observability
	ctx := context.Background()

	o.RecordJobProcessed(ctx, "find-compatible-walkers", "success")
	o.RecordJobDuration(ctx, "find-compatible-walkers", time.Second, "success")
	o.RecordTopScore(ctx, 0.9)

	spanCtx, span := o.StartSpan(ctx, "match-run")
	span.End()
	assert.Equal(t, ctx, spanCtx)
	assert.NoError(t, o.Shutdown(ctx))
}

func TestNew_ExportsMeterThroughPrometheus(t *testing.T) {
	reg := promclient.NewRegistry()
	o, err := New(Options{ServiceName: "dogwalk-workers", Registerer: reg})
	require.NoError(t, err)
	defer o.Shutdown(context.Background())

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "assign-walker", "success")
	o.RecordJobDuration(ctx, "assign-walker", 15*time.Millisecond, "success")
	o.RecordTopScore(ctx, 0.82)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "jobs_processed")
	assert.Contains(t, joined, "jobs_duration")
	assert.Contains(t, joined, "matching_top_score")
}

func TestNew_WithoutEndpointUsesNonRecordingSpans(t *testing.T) {
	o, err := New(Options{ServiceName: "dogwalk-workers", Registerer: promclient.NewRegistry()})
	require.NoError(t, err)
	defer o.Shutdown(context.Background())

	_, span := o.StartSpan(context.Background(), "match-run", attribute.String("ownerId", "owner-1"))
	defer span.End()

	assert.False(t, span.IsRecording())
}

func TestNew_WithJaegerEndpointExportsOnShutdown(t *testing.T) {
	var posts int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			atomic.AddInt32(&posts, 1)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer collector.Close()

	o, err := New(Options{
		ServiceName:    "dogwalk-workers",
		JaegerEndpoint: collector.URL + "/api/traces",
		Registerer:     promclient.NewRegistry(),
	})
	require.NoError(t, err)

	_, span := o.StartSpan(context.Background(), "match-run")
	assert.True(t, span.IsRecording())
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, o.Shutdown(ctx))

	assert.GreaterOrEqual(t, atomic.LoadInt32(&posts), int32(1))
}
