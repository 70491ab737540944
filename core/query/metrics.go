package query

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/trezcool/markaz/core/query"

var (
	meter = otel.Meter(meterName)

	hitCounter          = mustCounter("markaz.query.hits", "Reads served from the cache")
	missCounter         = mustCounter("markaz.query.misses", "Reads that had to load")
	failureCounter      = mustCounter("markaz.query.failures", "Loads that failed")
	invalidationCounter = mustCounter("markaz.query.invalidations", "Keys marked stale")
	sessionGauge        = mustGauge("markaz.query.sessions", "Live session caches")
)

func mustCounter(name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{call}"))
	if err != nil {
		panic(err)
	}
	return c
}

func mustGauge(name, desc string) metric.Int64UpDownCounter {
	g, err := meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit("{session}"))
	if err != nil {
		panic(err)
	}
	return g
}

// resource is the first level of a key ("courses" for "courses:frozen").
func resource(key string) attribute.KeyValue {
	for i := 0; i < len(key); i++ {
		if key[i] == KeySep[0] {
			return attribute.String("resource", key[:i])
		}
	}
	return attribute.String("resource", key)
}

func recordHit(ctx context.Context, key string) {
	hitCounter.Add(ctx, 1, metric.WithAttributes(resource(key)))
}

func recordMiss(ctx context.Context, key string) {
	missCounter.Add(ctx, 1, metric.WithAttributes(resource(key)))
}

func recordFailure(ctx context.Context, key string) {
	failureCounter.Add(ctx, 1, metric.WithAttributes(resource(key)))
}

func recordInvalidation(ctx context.Context, key string) {
	invalidationCounter.Add(ctx, 1, metric.WithAttributes(resource(key)))
}
