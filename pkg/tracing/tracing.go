// Package tracing 提供基于OpenTelemetry的分布式追踪初始化
//
// 管理后台的一次请求可能依次触达MySQL、Redis、RabbitMQ，
// 当列表查询或仪表盘聚合变慢时，追踪数据用来回答"慢在哪一步"。
//
// 核心概念：
// - Trace：一次完整的请求链路（如一次批量删除）
// - Span：链路中的一个操作单元（如一条聚合SQL）
// - SpanContext：跨服务传递的TraceID/SpanID
//
// 使用方式：
//
//	shutdown, err := tracing.InitTracer("shopadmin", "localhost:4317")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown(context.Background())
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// 参数：
//
//	serviceName: 服务名称（在Jaeger UI中分组显示）
//	endpoint: OTLP gRPC端点（如 localhost:4317），不含协议前缀
//
// 返回：
//
//	shutdown: 关闭函数，程序退出前必须调用，否则可能丢失最后一批Span
func InitTracer(serviceName, endpoint string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建OTLP gRPC Exporter
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // 内网环境禁用TLS
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 创建Resource（资源属性，附加到所有Span上）
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider
	// BatchSpanProcessor批量发送Span，性能优于逐条发送
	// 采样策略：后台流量小，全量采样；流量大了再换TraceIDRatioBased
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局TracerProvider与上下文传播器
	// W3C Trace Context：标准HTTP Header格式（traceparent、tracestate）
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建一个Span的便捷封装
// 业务代码无需直接依赖otel包：
//
//	ctx, span := tracing.StartSpan(ctx, "shopadmin", "BulkAction.Execute")
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName)
}

// ExtractTraceID 从Context提取TraceID（便于在日志中关联链路）
// 没有活跃Span时返回空字符串
func ExtractTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}
