package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const employeeKey contextKey = "employee"

// WithEmployee returns a copy of ctx carrying the employee id.
func WithEmployee(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, employeeKey, employeeID)
}

// EmployeeID returns the employee the request was authenticated as.
func EmployeeID(r *http.Request) string {
	if v, ok := r.Context().Value(employeeKey).(string); ok {
		return v
	}
	return ""
}
