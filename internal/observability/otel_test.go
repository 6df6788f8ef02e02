package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tbourn/go-celebrations-backend/internal/config"
)

func preserveOTelGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabledCfg(name string, insecure bool) config.OTELConfig {
	return config.OTELConfig{Enabled: true, Insecure: insecure, Endpoint: "localhost:4317", ServiceName: name, SampleRatio: 1}
}

func TestSetupOTel_Disabled_NoOp(t *testing.T) {
	preserveOTelGlobals(t)
	prev := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false, Endpoint: ""}, "v0")
	if err != nil || shutdown == nil {
		t.Fatalf("shutdown=%p err=%v", shutdown, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatal("disabled tracing must not replace the provider")
	}
}

func TestSetupOTel_MissingEndpoint(t *testing.T) {
	preserveOTelGlobals(t)
	cfg := enabledCfg("celebrations-api", true)
	cfg.Endpoint = "  "
	if _, err := SetupOTel(context.Background(), cfg, "v0"); !errors.Is(err, ErrMissingEndpoint) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetupOTel_InstallsProviderAndPropagator(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		preserveOTelGlobals(t)
		shutdown, err := SetupOTel(context.Background(), enabledCfg("celebrations-api", insecure), "v1.2.3")
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("insecure=%v: expected *sdktrace.TracerProvider", insecure)
		}

		ctx, span := otel.Tracer("test").Start(context.Background(), "dispatch")
		carrier := propagation.MapCarrier{}
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		span.End()
		if carrier.Get("traceparent") == "" {
			t.Fatalf("insecure=%v: traceparent not injected", insecure)
		}

		sctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		_ = shutdown(sctx)
		cancel()
	}
}

func TestSetupOTel_SeamErrors_LeaveGlobalsIntact(t *testing.T) {
	origExp, origRes := newTraceExporter, newResource
	t.Cleanup(func() { newTraceExporter, newResource = origExp, origRes })

	cases := map[string]func(){
		"exporter": func() {
			newTraceExporter = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
				return nil, errors.New("boom-exporter")
			}
		},
		"resource": func() {
			newResource = func(context.Context, string, string) (*resource.Resource, error) {
				return nil, errors.New("boom-resource")
			}
		},
	}
	for name, arm := range cases {
		t.Run(name, func(t *testing.T) {
			preserveOTelGlobals(t)
			newTraceExporter, newResource = origExp, origRes
			arm()
			prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
			if _, err := SetupOTel(context.Background(), enabledCfg("svc", true), "v0"); err == nil {
				t.Fatal("expected error")
			}
			if otel.GetTracerProvider() != prevTP || otel.GetTextMapPropagator() != prevProp {
				t.Fatal("globals changed on failure")
			}
		})
	}
}

func TestSamplerFor(t *testing.T) {
	cases := map[float64]string{
		-1:  "ParentBased{root:AlwaysOffSampler",
		0:   "ParentBased{root:AlwaysOffSampler",
		0.5: "ParentBased{root:TraceIDRatioBased{0.5}",
		1:   "ParentBased{root:AlwaysOnSampler",
		7:   "ParentBased{root:AlwaysOnSampler",
	}
	for ratio, prefix := range cases {
		got := samplerFor(ratio).Description()
		if len(got) < len(prefix) || got[:len(prefix)] != prefix {
			t.Fatalf("samplerFor(%v) = %q, want prefix %q", ratio, got, prefix)
		}
	}
}

func TestComponent(t *testing.T) {
	for in, want := range map[string]string{
		"celebrations-dispatch": "dispatch",
		"celebrations":          "api",
		"trailing-":             "api",
	} {
		if got := component(in); got != want {
			t.Fatalf("component(%q) = %q, want %q", in, got, want)
		}
	}
}
