package middleware

import (
	"context"
)

type contextKey string

const (
	subjectKey     contextKey = "subject"
	requestInfoKey contextKey = "request_info"
)

// requestInfo is shared by the logging middleware and the handlers below it,
// so values set deeper in the chain are visible when the request is logged.
type requestInfo struct {
	id      string
	subject string
}

func withRequestInfo(ctx context.Context, id string) (context.Context, *requestInfo) {
	info := &requestInfo{id: id}
	return context.WithValue(ctx, requestInfoKey, info), info
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// SetSubject stores the authenticated caller's identity.
func SetSubject(ctx context.Context, subject string) context.Context {
	if info := requestInfoFrom(ctx); info != nil {
		info.subject = subject
	}
	return context.WithValue(ctx, subjectKey, subject)
}

// Subject returns the authenticated caller, or "" when auth is disabled.
func Subject(ctx context.Context) string {
	v, _ := ctx.Value(subjectKey).(string)
	return v
}

func RequestID(ctx context.Context) string {
	if info := requestInfoFrom(ctx); info != nil {
		return info.id
	}
	return ""
}
