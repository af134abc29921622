package intent

import "context"

// Completer is the text-completion collaborator. expectJSON requests the
// provider's structured-output mode; responses are still treated as
// untrusted and may be malformed.
type Completer interface {
	Complete(ctx context.Context, system, user string, expectJSON bool) (string, error)
}
