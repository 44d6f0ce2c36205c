// Package commands contains the lifecycle operations a partner performs on an
// order. All commands follow a consistent pattern: a validated command object,
// a handler over the remote order store, and explicit error returns with no
// local rollback (the store copy is authoritative, last write wins).
package commands

import "context"

// Confirmer gates an irreversible operation behind an explicit user decision.
// Implementations present the prompt and report the choice; a false result is
// a decline, not an error.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}
