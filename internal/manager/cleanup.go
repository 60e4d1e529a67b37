package manager

import "time"

// startSweeper launches the background sweep that expires idle pool contexts
// and drops finished streaming sessions past their retention window.
func (m *Manager) startSweeper() {
	m.sweepStop = make(chan struct{})
	m.sweepDone = make(chan struct{})
	go func() {
		defer close(m.sweepDone)
		ticker := time.NewTicker(m.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.sweepStop:
				return
			case now := <-ticker.C:
				m.sweep(now)
			}
		}
	}()
}

func (m *Manager) stopSweeper() {
	close(m.sweepStop)
	<-m.sweepDone
}

// sweep expires idle contexts in every pool and prunes finished streaming
// sessions. Checked-out contexts and running sessions are never touched.
func (m *Manager) sweep(now time.Time) (evicted, removed int) {
	m.mu.RLock()
	models := make([]*loadedModel, 0, len(m.models))
	for _, lm := range m.models {
		models = append(models, lm)
	}
	m.mu.RUnlock()

	for _, lm := range models {
		n := lm.pool.cleanupExpired(now)
		if n == 0 {
			continue
		}
		evicted += n
		m.metrics.poolShrank(n)
		m.publisher.Publish(Event{Name: EventContextExpired, Model: lm.name, Fields: map[string]any{
			"expired": n,
		}})
	}
	removed = m.cleanupFinishedStreams(now)
	return evicted, removed
}

// CleanupContexts runs one sweep immediately, outside the background
// schedule, and reports what it reclaimed.
func (m *Manager) CleanupContexts() (evictedContexts, removedSessions int) {
	return m.sweep(time.Now())
}
