// Package notify periodically publishes each city's next prayer so that
// displays and home-automation clients can subscribe instead of computing
// times themselves.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/ramadan"
)

// DefaultInterval is used when Broadcaster.Interval is zero.
const DefaultInterval = time.Minute

// Topic returns the topic a city's next-prayer messages go to.
func Topic(slug string) string {
	return fmt.Sprintf("halalcities/%s/next-prayer", slug)
}

// Publisher delivers a payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Target is one place the broadcaster reports on.
type Target struct {
	Slug    string
	Coord   geo.Coordinate
	Method  prayer.Method
	Options prayer.Options
}

// TargetFromCity builds a target from a directory record, using def when the
// city has no customary method.
func TargetFromCity(c directory.City, def prayer.Method) (Target, error) {
	loc, err := c.Location()
	if err != nil {
		return Target{}, fmt.Errorf("city %s: %w", c.Slug, err)
	}
	return Target{
		Slug:    c.Slug,
		Coord:   c.Coordinate(),
		Method:  c.MethodOr(def),
		Options: prayer.Options{Location: loc},
	}, nil
}

// Message is the JSON payload published for a target.
type Message struct {
	City             string    `json:"city"`
	Next             string    `json:"next"`
	Time             time.Time `json:"time"`
	Remaining        string    `json:"remaining"`
	RemainingMinutes int       `json:"remaining_minutes"`
	Current          string    `json:"current,omitempty"`
	PublishedAt      time.Time `json:"published_at"`
}

// Broadcaster publishes a Message per target every Interval.
type Broadcaster struct {
	Publisher Publisher
	Targets   []Target
	Interval  time.Duration
	// Calendar marks Ramadan days; nil uses the embedded table.
	Calendar *ramadan.Calendar
	Now      func() time.Time
}

// Run publishes once immediately and then on every tick until ctx is
// cancelled. Publish failures are logged and retried on the next tick.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.Publisher == nil {
		return errors.New("notify: no publisher")
	}
	interval := b.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := b.PublishOnce(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("broadcast incomplete")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// PublishOnce sends the current message for every target. It keeps going
// past failed targets and returns their errors joined.
func (b *Broadcaster) PublishOnce(ctx context.Context) error {
	now := b.now()
	var errs []error
	for _, t := range b.Targets {
		msg, ok := b.message(t, now)
		if !ok {
			log.Debug().Str("city", t.Slug).Msg("no prayer time available")
			continue
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := b.Publisher.Publish(ctx, Topic(t.Slug), payload); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", t.Slug, err))
			continue
		}
		log.Debug().Str("city", t.Slug).Str("next", msg.Next).Msg("published")
	}
	return errors.Join(errs...)
}

func (b *Broadcaster) message(t Target, now time.Time) (Message, bool) {
	opts := t.Options
	if opts.Location == nil {
		opts.Location = prayer.LongitudeZone(t.Coord.Longitude)
	}
	cal := b.Calendar
	if cal == nil {
		cal = ramadan.DefaultCalendar()
	}
	local := now.In(opts.Location)
	opts.Ramadan = cal.Contains(local)

	info, ok := prayer.Upcoming(t.Coord, now, t.Method, opts)
	if !ok {
		return Message{}, false
	}
	msg := Message{
		City:             t.Slug,
		Next:             info.Name,
		Time:             info.Time.In(opts.Location),
		Remaining:        info.RemainingLabel,
		RemainingMinutes: int(info.Remaining / time.Minute),
		PublishedAt:      now,
	}
	today := prayer.Calculate(t.Coord, local, t.Method, opts).Prayers()
	if cur := prayer.CurrentPrayer(today, now); cur != nil {
		msg.Current = cur.Name
	}
	return msg, true
}

func (b *Broadcaster) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
