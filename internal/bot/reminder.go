package bot

import (
	"sync"
	"time"
)

type reminderKey struct {
	chatID    int64
	messageID int
}

// reminderJanitor keeps one cancellable deletion timer per posted reminder.
type reminderJanitor struct {
	mu      sync.Mutex
	timers  map[reminderKey]*time.Timer
	stopped bool
}

func newReminderJanitor() *reminderJanitor {
	return &reminderJanitor{timers: make(map[reminderKey]*time.Timer)}
}

// Schedule runs fire after ttl. A second schedule for the same message
// replaces the pending timer.
func (j *reminderJanitor) Schedule(chatID int64, messageID int, ttl time.Duration, fire func()) {
	key := reminderKey{chatID: chatID, messageID: messageID}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.stopped {
		return
	}
	if old, ok := j.timers[key]; ok {
		old.Stop()
	}
	j.timers[key] = time.AfterFunc(ttl, func() {
		j.forget(key)
		fire()
	})
}

// Cancel drops the pending timer for the message, reporting whether one was
// still armed.
func (j *reminderJanitor) Cancel(chatID int64, messageID int) bool {
	key := reminderKey{chatID: chatID, messageID: messageID}

	j.mu.Lock()
	defer j.mu.Unlock()
	timer, ok := j.timers[key]
	if !ok {
		return false
	}
	delete(j.timers, key)
	return timer.Stop()
}

// Stop cancels every pending timer and rejects new ones.
func (j *reminderJanitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stopped = true
	for key, timer := range j.timers {
		timer.Stop()
		delete(j.timers, key)
	}
}

func (j *reminderJanitor) forget(key reminderKey) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.timers, key)
}
