package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs an in-memory provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	UseTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { UseTracerProvider(nil) })
	return rec
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "smbwire", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())

	_, span := StartSpan(ctx, "noop")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestNoSpanHelpersAreSafe(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		AddEvent(ctx, "event")
		RecordError(ctx, nil)
		RecordError(ctx, errors.New("boom"))
		SetAttributes(ctx, ServerAddress("srv:445"))
	})
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestRecordedSpan(t *testing.T) {
	rec := recordSpans(t)
	assert.True(t, IsEnabled())

	ctx, span := StartSMBSpan(context.Background(), "NEGOTIATE", 0, ServerAddress("srv:445"))
	assert.Len(t, TraceID(ctx), 32)
	assert.Len(t, SpanID(ctx), 16)

	AddEvent(ctx, "request.sent", BytesWritten(106))
	SetAttributes(ctx, SMBDialect(0x0302))
	RecordError(ctx, errors.New("status failure"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, SpanNegotiate, got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	assert.Equal(t, codes.Error, got.Status().Code)

	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "NEGOTIATE", attrs[AttrSMBCommand])
	assert.Equal(t, "0", attrs[AttrSMBMessageID])
	assert.Equal(t, "srv:445", attrs[AttrServerAddress])
	assert.Equal(t, "0x0302", attrs[AttrSMBDialect])

	events := got.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "request.sent", events[0].Name)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestAttributeHelpers(t *testing.T) {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

	tests := []struct {
		name string
		attr attribute.KeyValue
		key  string
		want string
	}{
		{"ServerAddress", ServerAddress("srv:445"), AttrServerAddress, "srv:445"},
		{"NetworkPeer", NetworkPeer("10.0.0.1:445"), AttrNetworkPeer, "10.0.0.1:445"},
		{"SMBStatus", SMBStatus(0xC0000022), AttrSMBStatus, "0xC0000022"},
		{"SMBDialect", SMBDialect(0x0210), AttrSMBDialect, "0x0210"},
		{"SMBServerGUID", SMBServerGUID(id), AttrSMBServerGUID, id.String()},
		{"SMBClientGUID", SMBClientGUID(id), AttrSMBClientGUID, id.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, string(tt.attr.Key))
			assert.Equal(t, tt.want, tt.attr.Value.AsString())
		})
	}

	assert.Equal(t, int64(64), BytesRead(64).Value.AsInt64())
	assert.Equal(t, int64(106), BytesWritten(106).Value.AsInt64())
}
