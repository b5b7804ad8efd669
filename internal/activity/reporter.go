package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
)

const Topic = "activity_events"

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
}

type Event struct {
	Path      string    `json:"path"`
	UserID    *uint     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reporter forwards one activity event per handled request to the statistics
// pipeline. A fixed pool of workers drains a bounded queue; enqueuing never
// blocks the request path, and a full queue drops the event.
type Reporter struct {
	publisher Publisher
	logger    *slog.Logger
	events    chan Event
	wg        sync.WaitGroup
}

func NewReporter(publisher Publisher, logger *slog.Logger, workers, queueSize int) *Reporter {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}

	r := &Reporter{
		publisher: publisher,
		logger:    logger,
		events:    make(chan Event, queueSize),
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}

	return r
}

// Report enqueues an activity event. It returns immediately; on a saturated
// queue the event is dropped and logged.
func (r *Reporter) Report(path string, userID *uint) {
	event := Event{Path: path, UserID: userID, CreatedAt: time.Now()}
	select {
	case r.events <- event:
	default:
		r.logger.Warn("activity queue full, event dropped", "path", path)
	}
}

// Close stops accepting events and waits for the workers to drain the queue.
func (r *Reporter) Close() {
	close(r.events)
	r.wg.Wait()
}

func (r *Reporter) worker() {
	defer r.wg.Done()
	for event := range r.events {
		key := "anonymous"
		if event.UserID != nil {
			key = fmt.Sprint(*event.UserID)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.publisher.PublishEvent(ctx, Topic, key, event); err != nil {
			r.logger.Warn("activity publish failed", "error", err)
		}
		cancel()
	}
}

// Middleware reports every handled request, authenticated or not. Failures in
// the reporting pipeline never affect the response.
func (r *Reporter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			var userID *uint
			if principal := auth.PrincipalFromContext(c.Request().Context()); principal != nil {
				id := principal.ID
				userID = &id
			}
			r.Report(c.Request().URL.Path, userID)

			return err
		}
	}
}
