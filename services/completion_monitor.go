package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// CompletionMonitor periodically marks confirmed bookings whose slot has ended as completed.
type CompletionMonitor struct {
	Bookings *BookingService
	Interval time.Duration

	stopChan chan struct{}
	done     chan struct{}
	started  bool
	once     sync.Once
}

func NewCompletionMonitor(bookings *BookingService, interval time.Duration) *CompletionMonitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CompletionMonitor{
		Bookings: bookings,
		Interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (cm *CompletionMonitor) Start() {
	cm.started = true
	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.RunOnce(context.Background())
			case <-cm.stopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Completion monitor started (interval=%s)", cm.Interval)
}

// Stop ends the loop and waits for a running pass to finish.
func (cm *CompletionMonitor) Stop() {
	cm.once.Do(func() {
		close(cm.stopChan)
		if cm.started {
			<-cm.done
		}
	})
}

// RunOnce completes every due booking and returns how many were completed.
func (cm *CompletionMonitor) RunOnce(ctx context.Context) int {
	due, err := cm.Bookings.DueForCompletion(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error loading bookings to complete: %v", err)
		return 0
	}

	completed := 0
	for _, b := range due {
		if _, err := cm.Bookings.SetStatus(ctx, SystemActor, b.ID, models.StatusCompleted); err != nil {
			utils.ErrorLogger.Printf("Error completing booking %d: %v", b.ID, err)
			continue
		}
		completed++
	}
	if completed > 0 {
		utils.InfoLogger.Printf("Completed %d elapsed bookings", completed)
	}
	return completed
}
