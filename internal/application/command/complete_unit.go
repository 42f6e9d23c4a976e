// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/naluwan/wsa/internal/domain/access"
	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/progress"
	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/pkg/retry"
	"github.com/naluwan/wsa/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE UNIT COMMAND
// The only write operation of the core: marks a unit completed for a user and
// credits the unit's XP reward exactly once. The state transition and the
// credit form one atomic unit of work inside progress.Store; this handler is
// responsible for gating, validation, bounded retry and event publishing.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteUnitCommand contains the data to complete a unit.
type CompleteUnitCommand struct {
	// UserID is the resolved identity of the caller. An empty UserID means
	// the session collaborator supplied no identity: Unauthorized, not Forbidden.
	UserID string

	// UnitSlug is the human-readable unit identifier from the URL.
	UnitSlug catalog.UnitSlug

	// At is when the completion happened (defaults to now if zero).
	At time.Time
}

// Validate validates the command.
func (c CompleteUnitCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("progress", "Complete", shared.ErrUnauthorized, "no caller identity")
	}
	if !c.UnitSlug.IsValid() {
		return shared.NewDomainError("progress", "Complete", shared.ErrInvalidInput, "invalid unit slug")
	}
	return nil
}

// CompleteUnitResult contains the result of completing a unit.
type CompleteUnitResult struct {
	// UnitSlug is the identifier of the completed unit.
	UnitSlug catalog.UnitSlug

	// AlreadyCompleted indicates this was an idempotent repeat: the call
	// succeeded but nothing was mutated and no XP was credited.
	AlreadyCompleted bool

	// XPEarned is the amount credited by this call (0 on repeats).
	XPEarned int

	// Account is the XP account state after the operation.
	Account *xp.Account

	// LeveledUp indicates the credit pushed the user into a higher level.
	LeveledUp bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CompleteUnitHandler handles the CompleteUnitCommand.
type CompleteUnitHandler struct {
	catalogRepo  catalog.Repository
	entitlements access.EntitlementStore
	store        progress.Store
	publisher    shared.EventPublisher
	retrier      *retry.Retrier
	anchor       timeutil.WeekAnchor
	clock        timeutil.Clock
}

// NewCompleteUnitHandler creates a new CompleteUnitHandler.
// The retrier is bounded and applied only to the atomic store operation,
// which is safe to retry because completion is idempotent.
func NewCompleteUnitHandler(
	catalogRepo catalog.Repository,
	entitlements access.EntitlementStore,
	store progress.Store,
	publisher shared.EventPublisher,
	anchor timeutil.WeekAnchor,
	clock timeutil.Clock,
) *CompleteUnitHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &CompleteUnitHandler{
		catalogRepo:  catalogRepo,
		entitlements: entitlements,
		store:        store,
		publisher:    publisher,
		retrier: retry.New(
			retry.WithMaxAttempts(3),
			retry.WithRetryIf(shared.IsRetryable),
		),
		anchor: anchor,
		clock:  clock,
	}
}

// Handle executes the complete unit command.
func (h *CompleteUnitHandler) Handle(ctx context.Context, cmd CompleteUnitCommand) (*CompleteUnitResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Resolve the unit. An unknown slug is NotFound, never a denial.
	unit, err := h.catalogRepo.GetUnitBySlug(ctx, cmd.UnitSlug)
	if err != nil {
		return nil, err
	}

	// Access Gate precondition: a completion against an inaccessible unit
	// fails with Forbidden and performs no mutation.
	ents, err := h.entitlements.GetEntitlements(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("complete_unit: failed to load entitlements: %w", err)
	}
	if decision := access.CanAccess(unit, ents); !decision.Granted {
		return nil, shared.NewDomainError("access", "Complete", shared.ErrForbidden,
			fmt.Sprintf("unit %s is not accessible: %s", unit.Slug, decision.Reason))
	}

	at := cmd.At
	if at.IsZero() {
		at = h.clock.Now()
	}

	params := progress.CompleteParams{
		RecordID:    uuid.NewString(),
		UserID:      cmd.UserID,
		UnitID:      unit.ID,
		XPReward:    int(unit.XPReward),
		CompletedAt: at,
	}

	var stored *progress.CompleteResult
	err = h.retrier.Do(ctx, func(ctx context.Context) error {
		var opErr error
		stored, opErr = h.store.CompleteUnit(ctx, params)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	result := &CompleteUnitResult{
		UnitSlug:         unit.Slug,
		AlreadyCompleted: stored.AlreadyCompleted,
		Account:          stored.Account,
	}

	if stored.AlreadyCompleted {
		return result, nil
	}

	result.XPEarned = int(unit.XPReward)

	// The level is a pure function of TotalXP, so the pre-credit level can
	// be recomputed from the post-credit balance.
	oldLevel := xp.CalculateLevel(stored.Account.TotalXP - xp.XP(unit.XPReward))
	newLevel := stored.Account.Level()
	result.LeveledUp = newLevel > oldLevel

	if h.publisher != nil {
		h.publish(shared.NewUnitCompletedEvent(cmd.UserID, unit.ID, result.XPEarned))
		h.publish(shared.NewXPCreditedEvent(cmd.UserID, result.XPEarned,
			int(stored.Account.TotalXP), int(stored.Account.WeeklyXP)))
		if result.LeveledUp {
			h.publish(shared.NewLevelUpEvent(cmd.UserID, int(oldLevel), int(newLevel)))
		}
	}

	return result, nil
}

// publish sends an event, swallowing publisher errors: event delivery must
// never fail a completion that already committed.
func (h *CompleteUnitHandler) publish(event shared.Event) {
	_ = h.publisher.Publish(event)
}

