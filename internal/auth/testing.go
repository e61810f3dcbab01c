package auth

import "context"

// SetClientForTest injects a client ID and scope into the context for testing purposes.
func SetClientForTest(ctx context.Context, clientID, scope string) context.Context {
	return withClient(ctx, clientID, scope)
}
