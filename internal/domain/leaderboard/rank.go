// Package leaderboard содержит доменную модель рейтинга пользователей по XP.
// Рейтинг - чистая проекция над снапшотом XP-счетов: никакого собственного
// хранилища и кеширования здесь нет, вычисление всегда идёт от переданного
// состояния. Свежесть данных - забота вызывающей стороны.
package leaderboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VIEW
// ══════════════════════════════════════════════════════════════════════════════

// View определяет разрез рейтинга.
type View string

const (
	// ViewTotal - рейтинг по суммарному опыту за всё время.
	ViewTotal View = "total"
	// ViewWeekly - рейтинг по опыту текущей недели.
	ViewWeekly View = "weekly"
)

// IsValid проверяет, что разрез корректен.
func (v View) IsValid() bool {
	return v == ViewTotal || v == ViewWeekly
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry представляет одну строку рейтинга.
type Entry struct {
	// Rank - позиция в рейтинге, начиная с 1. Ранги плотные и уникальные:
	// при равном ключе сортировки места различаются за счёт tie-break.
	Rank int

	// UserID - идентификатор пользователя.
	UserID string

	// DisplayName - отображаемое имя.
	DisplayName string

	// AvatarURL - адрес аватара (может быть пустым).
	AvatarURL string

	// Level - уровень, производный от TotalXP.
	Level int

	// TotalXP - суммарный опыт.
	TotalXP int

	// WeeklyXP - опыт текущего недельного окна на момент построения.
	WeeklyXP int
}

// String возвращает строковое представление строки для логирования.
func (e Entry) String() string {
	return fmt.Sprintf("Entry{Rank: %d, User: %s, Total: %d, Weekly: %d}", e.Rank, e.UserID, e.TotalXP, e.WeeklyXP)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Rank строит рейтинг по переданному снапшоту счетов.
// Ключ сортировки: TotalXP (total) либо эффективный WeeklyXP (weekly) по
// убыванию. Tie-break: userID по возрастанию - порядок детерминирован и
// никогда не зависит от порядка входных данных. Ранги назначаются плотно
// с единицы, общих рангов нет.
func Rank(accounts []*xp.Account, view View, anchor timeutil.WeekAnchor, now time.Time) []Entry {
	entries := make([]Entry, 0, len(accounts))
	for _, account := range accounts {
		if account == nil {
			continue
		}
		entries = append(entries, Entry{
			UserID:      account.UserID,
			DisplayName: account.DisplayName,
			AvatarURL:   account.AvatarURL,
			Level:       int(account.Level()),
			TotalXP:     int(account.TotalXP),
			WeeklyXP:    int(account.EffectiveWeeklyXP(anchor, now)),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		ki, kj := entries[i].TotalXP, entries[j].TotalXP
		if view == ViewWeekly {
			ki, kj = entries[i].WeeklyXP, entries[j].WeeklyXP
		}
		if ki != kj {
			return ki > kj
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Top возвращает первые n строк рейтинга.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
