package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mockify/backend/internal/rooms"
)

// RunSweeper evicts idle rooms every SweepInterval until ctx is cancelled.
func (g *Gateway) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.SweepInterval)
	defer ticker.Stop()

	g.logger.Info("room sweeper started",
		zap.Duration("interval", g.cfg.SweepInterval),
		zap.Duration("idle_ttl", g.cfg.IdleTTL),
	)
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("room sweeper stopped")
			return
		case <-ticker.C:
			if n := g.Sweep(); n > 0 {
				g.logger.Info("expired rooms swept", zap.Int("count", n))
			}
		}
	}
}

// Sweep closes every room idle for longer than IdleTTL and returns how many
// were closed.
func (g *Gateway) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	var expired []*rooms.Room
	g.registry.ForEach(func(r *rooms.Room) {
		if r.IdleFor(now) > g.cfg.IdleTTL {
			expired = append(expired, r)
		}
	})
	for _, r := range expired {
		g.closeRoom(r, ReasonExpired, "Room expired due to inactivity.")
	}
	return len(expired)
}
