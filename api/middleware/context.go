package middleware

import "context"

type contextKey string

const ctxClinicID contextKey = "clinic_id"

func ClinicIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxClinicID).(string); ok {
		return v
	}
	return ""
}

// WithClinicID injects the clinic identifier into the context for downstream handlers.
func WithClinicID(ctx context.Context, clinicID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClinicID, clinicID)
}
