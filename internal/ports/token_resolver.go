package ports

import "context"

// TokenResolver maps a bearer token to the employee it was issued to.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (employeeID string, err error)
}
