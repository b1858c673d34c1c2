package listeners

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/events"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
)

// PlanCacheListener drops the cached weekly grid whenever schedules or
// follow-ups change, so the next read recomputes it.
type PlanCacheListener struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

func NewPlanCacheListener(cache repositories.CacheRepositoryInterface, logger *zap.Logger) *PlanCacheListener {
	return &PlanCacheListener{cache: cache, logger: logger, now: time.Now}
}

func (l *PlanCacheListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.SchedulesUpdatedEvent{}.Name(), l.onChange)
	bus.Subscribe(events.FollowUpsUpdatedEvent{}.Name(), l.onChange)
}

func (l *PlanCacheListener) onChange(ctx context.Context, event eventbus.Event) error {
	// Views only render the current and next year; older grids expire by
	// TTL on their own.
	year := l.now().Year()
	keys := []string{
		services.PlanCacheKey(year),
		services.PlanCacheKey(year + 1),
	}
	if schedEvent, ok := event.(events.SchedulesUpdatedEvent); ok {
		for _, y := range schedEvent.Years {
			keys = append(keys, services.PlanCacheKey(y))
		}
	}
	return l.cache.Del(ctx, keys...)
}
