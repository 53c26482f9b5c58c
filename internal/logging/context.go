package logging

import (
	"context"
	"maps"
)

type fieldsKey struct{}

const (
	fieldRequestID = "request_id"
	fieldMethod    = "method"
	fieldPath      = "path"
)

// ContextWithFields attaches logging fields to ctx. Fields already on ctx are
// kept; on a key collision the new value wins. Loggers built with
// WithContext(ctx) add these fields to every entry.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// ContextFields returns a copy of the fields attached to ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// WithRequest tags ctx with the id, method and path of an HTTP request so
// content loads triggered by that request can be traced back to it.
func WithRequest(ctx context.Context, requestID, method, path string) context.Context {
	return ContextWithFields(ctx, map[string]any{
		fieldRequestID: requestID,
		fieldMethod:    method,
		fieldPath:      path,
	})
}
