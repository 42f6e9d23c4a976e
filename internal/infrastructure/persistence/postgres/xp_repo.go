package postgres

import (
	"context"
	"fmt"

	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/internal/domain/xp"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// XP ACCOUNT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// XPAccountRepository implements xp.Repository for PostgreSQL.
//
// Crediting is not done through this repository: the atomic
// progress-plus-credit path lives in ProgressStore.
type XPAccountRepository struct {
	conn *Connection
}

// NewXPAccountRepository creates a new XPAccountRepository.
func NewXPAccountRepository(conn *Connection) *XPAccountRepository {
	return &XPAccountRepository{conn: conn}
}

// GetByUserID returns a user's XP account.
func (r *XPAccountRepository) GetByUserID(ctx context.Context, userID string) (*xp.Account, error) {
	query := `
		SELECT user_id, display_name, avatar_url, total_xp, weekly_xp,
			   week_start, created_at, updated_at
		FROM xp_accounts
		WHERE user_id = $1
	`

	account, err := scanAccount(r.conn.QueryRow(ctx, query, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get xp account %s: %w", userID, err)
	}
	return account, nil
}

// Create creates a new XP account.
func (r *XPAccountRepository) Create(ctx context.Context, account *xp.Account) error {
	query := `
		INSERT INTO xp_accounts (
			user_id, display_name, avatar_url, total_xp, weekly_xp,
			week_start, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var avatarURL *string
	if account.AvatarURL != "" {
		avatarURL = &account.AvatarURL
	}

	_, err := r.conn.Exec(ctx, query,
		account.UserID,
		account.DisplayName,
		avatarURL,
		int64(account.TotalXP),
		int64(account.WeeklyXP),
		account.WeekStart,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create xp account: %w", err)
	}
	return nil
}

// List returns a snapshot of every XP account. Per-account reads are
// consistent; the snapshot as a whole tolerates concurrent writes to other
// accounts.
func (r *XPAccountRepository) List(ctx context.Context) ([]*xp.Account, error) {
	query := `
		SELECT user_id, display_name, avatar_url, total_xp, weekly_xp,
			   week_start, created_at, updated_at
		FROM xp_accounts
		ORDER BY total_xp DESC, user_id ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list xp accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*xp.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanAccount(row pgx.Row) (*xp.Account, error) {
	account := &xp.Account{}
	var avatarURL *string
	var totalXP, weeklyXP int64
	err := row.Scan(
		&account.UserID, &account.DisplayName, &avatarURL,
		&totalXP, &weeklyXP, &account.WeekStart,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if avatarURL != nil {
		account.AvatarURL = *avatarURL
	}
	account.TotalXP = xp.XP(totalXP)
	account.WeeklyXP = xp.XP(weeklyXP)
	return account, nil
}
