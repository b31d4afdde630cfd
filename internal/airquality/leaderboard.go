package airquality

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LeaderboardEntry is one city's row in the ranked AQI view.
type LeaderboardEntry struct {
	City           string                `json:"city"`
	AQI            *int                  `json:"aqi"`
	Concentrations map[Parameter]float64 `json:"concentrations,omitempty"`
	Source         string                `json:"source,omitempty"`
}

// Leaderboard serves a ranked AQI view over a fixed city list, cached for a
// short TTL. It is a collaborator around the core pipeline, not part of it:
// the scheduler refreshes it in the background and handlers read the cache.
type Leaderboard struct {
	service *Service
	cities  []string
	ttl     time.Duration
	logger  *zap.Logger

	mu        sync.RWMutex
	entries   []LeaderboardEntry
	refreshed time.Time
}

func NewLeaderboard(service *Service, cities []string, ttl time.Duration, logger *zap.Logger) *Leaderboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Leaderboard{service: service, cities: cities, ttl: ttl, logger: logger}
}

// Get returns the cached board, refreshing it first when stale or empty.
func (l *Leaderboard) Get(ctx context.Context) []LeaderboardEntry {
	l.mu.RLock()
	fresh := time.Since(l.refreshed) < l.ttl && l.entries != nil
	entries := l.entries
	l.mu.RUnlock()

	if fresh {
		return entries
	}
	return l.Refresh(ctx)
}

// Refresh fetches every configured city and replaces the cached board. Cities
// whose fetch fails keep a nil AQI row rather than dropping off the board.
func (l *Leaderboard) Refresh(ctx context.Context) []LeaderboardEntry {
	board := make([]LeaderboardEntry, 0, len(l.cities))
	for _, city := range l.cities {
		entry := LeaderboardEntry{City: city}
		agg, res := l.service.Fetch(ctx, city)
		if res.Ok && agg != nil {
			entry.AQI = agg.AQI
			entry.Concentrations = agg.Concentrations
			entry.Source = agg.Source
		} else {
			l.logger.Warn("leaderboard refresh: city fetch failed",
				zap.String("city", city),
				zap.String("reason", res.Error))
		}
		board = append(board, entry)
	}

	// Worst air first; cities without an index sink to the bottom.
	sort.SliceStable(board, func(i, j int) bool {
		a, b := board[i].AQI, board[j].AQI
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	l.mu.Lock()
	l.entries = board
	l.refreshed = time.Now()
	l.mu.Unlock()

	return board
}

// Cities returns the configured city list.
func (l *Leaderboard) Cities() []string { return l.cities }
