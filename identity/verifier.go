package identity

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the verified subject of a request, as reported by the auth
// service. The messenger never trusts client-supplied identity: everything
// that reads or mutates a conversation goes through a Verifier first.
type Identity struct {
	SubjectID uuid.UUID
	Login     string
}

// Verifier turns an opaque credential token into a verified identity.
// Implementations must fail closed: any doubt (bad signature, expiry, remote
// error, timeout) is an authentication failure, never a pass-through.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
