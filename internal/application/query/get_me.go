package query

import (
	"context"

	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ME QUERY
// Возвращает XP-профиль текущего пользователя. Недельный опыт отдаётся
// эффективным значением: истёкшее окно отчитывается нулём без мутации счёта.
// ══════════════════════════════════════════════════════════════════════════════

// GetMeQuery contains the parameters of the profile request.
type GetMeQuery struct {
	// UserID is the resolved caller identity.
	UserID string
}

// Validate validates the query.
func (q GetMeQuery) Validate() error {
	if q.UserID == "" {
		return shared.NewDomainError("xp", "GetMe", shared.ErrUnauthorized, "no caller identity")
	}
	return nil
}

// MeDTO is the profile response.
type MeDTO struct {
	// UserID is the user identifier.
	UserID string `json:"userId"`

	// DisplayName is the leaderboard display name.
	DisplayName string `json:"displayName"`

	// AvatarURL is the avatar address (null when unset).
	AvatarURL *string `json:"avatarUrl"`

	// Level is the level derived from total XP.
	Level int `json:"level"`

	// TotalXP is the lifetime XP balance.
	TotalXP int `json:"totalXp"`

	// WeeklyXP is the XP earned in the current weekly window.
	WeeklyXP int `json:"weeklyXp"`
}

// GetMeHandler handles profile requests.
type GetMeHandler struct {
	accounts xp.Repository
	anchor   timeutil.WeekAnchor
	clock    timeutil.Clock
}

// NewGetMeHandler creates a new handler.
func NewGetMeHandler(accounts xp.Repository, anchor timeutil.WeekAnchor, clock timeutil.Clock) *GetMeHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &GetMeHandler{accounts: accounts, anchor: anchor, clock: clock}
}

// Handle returns the caller's XP profile.
func (h *GetMeHandler) Handle(ctx context.Context, q GetMeQuery) (*MeDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	account, err := h.accounts.GetByUserID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	var avatar *string
	if account.AvatarURL != "" {
		url := account.AvatarURL
		avatar = &url
	}

	return &MeDTO{
		UserID:      account.UserID,
		DisplayName: account.DisplayName,
		AvatarURL:   avatar,
		Level:       int(account.Level()),
		TotalXP:     int(account.TotalXP),
		WeeklyXP:    int(account.EffectiveWeeklyXP(h.anchor, h.clock.Now())),
	}, nil
}
