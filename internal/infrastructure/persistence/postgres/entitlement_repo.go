package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/naluwan/wsa/internal/domain/access"
	"github.com/naluwan/wsa/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITLEMENT STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EntitlementStore implements access.EntitlementStore for PostgreSQL.
type EntitlementStore struct {
	conn *Connection
}

// NewEntitlementStore creates a new EntitlementStore.
func NewEntitlementStore(conn *Connection) *EntitlementStore {
	return &EntitlementStore{conn: conn}
}

// GetEntitlements returns the set of course codes the user owns. An unknown
// user simply has no rows and gets an empty set.
func (r *EntitlementStore) GetEntitlements(ctx context.Context, userID string) (access.EntitlementSet, error) {
	query := `
		SELECT course_code
		FROM entitlements
		WHERE user_id = $1
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlements: %w", err)
	}
	defer rows.Close()

	set := access.NewEntitlementSet()
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan entitlement: %w", err)
		}
		set[catalog.CourseCode(code)] = struct{}{}
	}
	return set, rows.Err()
}

// Grant records ownership of a course. Granting the same course twice is a
// no-op.
func (r *EntitlementStore) Grant(ctx context.Context, id, userID string, code catalog.CourseCode, at time.Time) error {
	query := `
		INSERT INTO entitlements (id, user_id, course_code, granted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_code) DO NOTHING
	`

	if _, err := r.conn.Exec(ctx, query, id, userID, string(code), at); err != nil {
		return fmt.Errorf("failed to grant entitlement: %w", err)
	}
	return nil
}
