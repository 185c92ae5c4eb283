package provider

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Operation names a provider operation in write-behind notifications.
type Operation string

const (
	OpGet    Operation = "get"
	OpPut    Operation = "put"
	OpDelete Operation = "delete"
)

// Target names the store a write-behind call was issued against.
type Target string

const (
	TargetNetwork Target = "network"
	TargetStorage Target = "storage"
)

// WriteBehindObserver is told the outcome of every write-behind call.
// err is nil on success. The caller of the originating operation never sees it.
type WriteBehindObserver func(op Operation, target Target, err error)

type options struct {
	observer WriteBehindObserver
	tracer   trace.Tracer
}

// Option configures a DataProvider.
type Option func(*options)

// WithObserver installs a write-behind observer.
func WithObserver(obs WriteBehindObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithTracer overrides the tracer taken from the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

func defaultOptions() options {
	return options{
		tracer: otel.Tracer("datasync/internal/provider"),
	}
}
