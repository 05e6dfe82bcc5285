// Copyright 2020 Coinbase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coinbase/rosetta-sdk-go/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName = "rosetta-accounts"

	// dialTimeout bounds the connection to the collector.
	dialTimeout = time.Second

	idleConnTimeout = 30 * time.Second
)

// InitProvider installs a global tracer provider exporting
// spans to the OTLP collector at collectorURL. The returned
// function flushes and shuts down the exporter.
func InitProvider(ctx context.Context, collectorURL string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			// the service name used to display traces in backends
			semconv.ServiceName(serviceName),
		))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create tracing resource", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, collectorURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to collector %s", err, collectorURL)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create trace exporter", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return traceProvider.Shutdown, nil
}

// NewHTTPClient returns an *http.Client whose requests are
// recorded as spans named after the request path.
func NewHTTPClient(timeout time.Duration, maxConnections int) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.IdleConnTimeout = idleConnTimeout
	transport.MaxIdleConns = maxConnections
	transport.MaxIdleConnsPerHost = maxConnections

	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(
			transport,
			otelhttp.WithSpanNameFormatter(transportFormatter),
		),
	}
}

// NewRosettaClient returns a Rosetta API client
// sending its requests with httpClient.
func NewRosettaClient(url string, httpClient *http.Client) *client.APIClient {
	return client.NewAPIClient(client.NewConfiguration(
		url,
		"rosetta-sdk-go",
		httpClient,
	))
}

func transportFormatter(_ string, r *http.Request) string {
	if len(r.URL.Path) == 0 {
		return r.Method
	}

	return r.URL.Path
}
