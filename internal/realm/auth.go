package realm

import (
	"context"
	"fmt"

	"github.com/forgeward/realmcore/internal/db"
)

// AuthenticateAccount resolves an account by name. Capacity is enforced
// separately by SessionManager.Register, per C11's "capacity-gated account
// collections" contract. The login handshake itself (SRP-6a, password
// verification) is out of scope — by the time a connection reaches the
// realm, the client has already authenticated against the web/login
// service named in spec.md's external-collaborators list; this step only
// resolves the account row.
func AuthenticateAccount(ctx context.Context, database *db.DB, accountName string) (db.Account, error) {
	acc, err := database.GetOrCreateAccount(ctx, accountName)
	if err != nil {
		return db.Account{}, fmt.Errorf("resolving account %q: %w", accountName, err)
	}
	return acc, nil
}
