package events

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-booking/models"
)

// Event types
const (
	BookingCreated   = "booking_created"
	BookingUpdated   = "booking_updated"
	BookingConfirmed = "booking_confirmed"
	BookingCancelled = "booking_cancelled"
	BookingCompleted = "booking_completed"
)

// StatusEvent maps a booking status to the event announcing it.
func StatusEvent(status models.BookingStatus) string {
	switch status {
	case models.StatusConfirmed:
		return BookingConfirmed
	case models.StatusCancelled:
		return BookingCancelled
	case models.StatusCompleted:
		return BookingCompleted
	}
	return BookingUpdated
}

type Event struct {
	Type    string         `json:"event"`
	Booking models.Booking `json:"booking"`
	ActorID uint           `json:"actor_id,omitempty"`
	At      time.Time      `json:"at"`
}

// Notifier delivers an event somewhere outside the booking transaction.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, e Event) error
}

// Dispatcher fans events out to notifiers. Publish never blocks the caller and never
// reports delivery errors: by the time it is called the booking change is already durable.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	log       *logrus.Logger
	wg        sync.WaitGroup
}

func NewDispatcher(log *logrus.Logger, timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{notifiers: notifiers, timeout: timeout, log: log}
}

// Add registers another notifier. Not safe to call concurrently with Publish.
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

func (d *Dispatcher) Publish(e Event) {
	if d == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.log.WithField("notifier", n.Name()).Errorf("notifier panicked: %v", r)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := n.Notify(ctx, e); err != nil {
				d.log.WithFields(logrus.Fields{
					"notifier":   n.Name(),
					"event":      e.Type,
					"booking_id": e.Booking.ID,
				}).Errorf("notification failed: %v", err)
			}
		}(n)
	}
}

// Wait blocks until every in-flight notification has returned. Used on shutdown and in tests.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
