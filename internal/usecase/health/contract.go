package health

import "context"

// Pinger checks the vector store connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an embedding or language-model provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerOf returns v as a ProviderChecker, or nil when v cannot be checked.
// The nil result is an untyped nil interface, which New treats as "skip".
func CheckerOf(v any) ProviderChecker {
	if pc, ok := v.(ProviderChecker); ok {
		return pc
	}
	return nil
}
