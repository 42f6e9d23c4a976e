package postgres

import (
	"context"
	"fmt"

	"github.com/naluwan/wsa/internal/domain/progress"
	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/pkg/timeutil"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressStore implements progress.Store for PostgreSQL.
//
// Exactly-once crediting rests on the UNIQUE (user_id, unit_id) constraint:
// the completion insert uses ON CONFLICT DO NOTHING, and only the transaction
// that actually inserted the row touches the XP account. Concurrent calls for
// the same pair serialize on the constraint, all others see AlreadyCompleted.
type ProgressStore struct {
	conn   *Connection
	anchor timeutil.WeekAnchor
}

// NewProgressStore creates a new ProgressStore.
func NewProgressStore(conn *Connection, anchor timeutil.WeekAnchor) *ProgressStore {
	return &ProgressStore{conn: conn, anchor: anchor}
}

// CompleteUnit atomically records a completion and credits the unit's XP.
func (s *ProgressStore) CompleteUnit(ctx context.Context, params progress.CompleteParams) (*progress.CompleteResult, error) {
	var result *progress.CompleteResult

	err := s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO user_unit_progress (id, user_id, unit_id, completed_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, unit_id) DO NOTHING
		`, params.RecordID, params.UserID, params.UnitID, params.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}

		if tag.RowsAffected() == 0 {
			// Lost the race or a plain repeat: report success, no mutation.
			account, err := s.readAccount(ctx, tx, params.UserID)
			if err != nil {
				return err
			}
			result = &progress.CompleteResult{AlreadyCompleted: true, Account: account}
			return nil
		}

		account, err := s.lockAccount(ctx, tx, params.UserID)
		if err != nil {
			return err
		}

		if err := account.Credit(xp.XP(params.XPReward), s.anchor, params.CompletedAt); err != nil {
			return err
		}

		if err := s.saveAccount(ctx, tx, account); err != nil {
			return err
		}

		result = &progress.CompleteResult{AlreadyCompleted: false, Account: account}
		return nil
	})
	if err != nil {
		if IsTransient(err) {
			return nil, shared.WrapError("progress", "CompleteUnit",
				shared.ErrServiceUnavailable, "storage temporarily unavailable", err)
		}
		return nil, err
	}
	return result, nil
}

// IsCompleted reports whether the user has completed the unit.
func (s *ProgressStore) IsCompleted(ctx context.Context, userID, unitID string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_unit_progress WHERE user_id = $1 AND unit_id = $2
		)
	`, userID, unitID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check completion: %w", err)
	}
	return exists, nil
}

// CompletedUnitIDs returns which of the given units the user has completed.
func (s *ProgressStore) CompletedUnitIDs(ctx context.Context, userID string, unitIDs []string) (map[string]bool, error) {
	completed := make(map[string]bool, len(unitIDs))
	if len(unitIDs) == 0 {
		return completed, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT unit_id
		FROM user_unit_progress
		WHERE user_id = $1 AND unit_id = ANY($2)
	`, userID, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed units: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var unitID string
		if err := rows.Scan(&unitID); err != nil {
			return nil, fmt.Errorf("failed to scan completed unit: %w", err)
		}
		completed[unitID] = true
	}
	return completed, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Account access inside the transaction
// ─────────────────────────────────────────────────────────────────────────────

func (s *ProgressStore) lockAccount(ctx context.Context, tx pgx.Tx, userID string) (*xp.Account, error) {
	return s.accountRow(ctx, tx, userID, true)
}

func (s *ProgressStore) readAccount(ctx context.Context, tx pgx.Tx, userID string) (*xp.Account, error) {
	return s.accountRow(ctx, tx, userID, false)
}

func (s *ProgressStore) accountRow(ctx context.Context, tx pgx.Tx, userID string, forUpdate bool) (*xp.Account, error) {
	query := `
		SELECT user_id, display_name, avatar_url, total_xp, weekly_xp,
			   week_start, created_at, updated_at
		FROM xp_accounts
		WHERE user_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	account, err := scanAccount(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load xp account: %w", err)
	}
	return account, nil
}

func (s *ProgressStore) saveAccount(ctx context.Context, tx pgx.Tx, account *xp.Account) error {
	var avatarURL *string
	if account.AvatarURL != "" {
		avatarURL = &account.AvatarURL
	}

	_, err := tx.Exec(ctx, `
		UPDATE xp_accounts
		SET display_name = $2, avatar_url = $3, total_xp = $4, weekly_xp = $5,
			week_start = $6, updated_at = $7
		WHERE user_id = $1
	`,
		account.UserID,
		account.DisplayName,
		avatarURL,
		int64(account.TotalXP),
		int64(account.WeeklyXP),
		account.WeekStart,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save xp account: %w", err)
	}
	return nil
}
