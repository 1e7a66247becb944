package ctxutil

import "context"

type traceDataKey struct{}
type operatorKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// Operator identifies the authenticated control-panel user of a request.
type Operator struct {
	Subject string
	Name    string
}

func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

func GetOperator(ctx context.Context) *Operator {
	if op, ok := ctx.Value(operatorKey{}).(*Operator); ok {
		return op
	}
	return nil
}
