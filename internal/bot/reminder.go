package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/an26179529/GroupBot/internal/order"
)

// reminderWorker periodically nudges channels whose order has gone idle.
// It never closes a session.
type reminderWorker struct {
	sessions sessionLister
	session  reminderSession
	after    time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	ticker   *time.Ticker
	interval time.Duration
	// reminded maps a conversation key to the UpdatedAt it was reminded for.
	reminded map[string]time.Time
}

type sessionLister interface {
	Sessions() []*order.Session
}

// Minimal session interface for sending channel messages.
type reminderSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func newReminderWorker(session reminderSession, sessions sessionLister, after time.Duration) *reminderWorker {
	return &reminderWorker{
		sessions: sessions,
		session:  session,
		after:    after,
		stopChan: make(chan struct{}),
		interval: time.Minute,
		reminded: make(map[string]time.Time),
	}
}

func (w *reminderWorker) start() {
	if w == nil {
		return
	}
	w.ticker = time.NewTicker(w.interval)
	go w.loop()
}

func (w *reminderWorker) stop() {
	if w == nil {
		return
	}
	w.stopOnce.Do(func() {
		close(w.stopChan)
		if w.ticker != nil {
			w.ticker.Stop()
		}
	})
}

func (w *reminderWorker) loop() {
	ctx := context.Background()
	for {
		select {
		case <-w.ticker.C:
			w.tick(ctx, time.Now())
		case <-w.stopChan:
			return
		}
	}
}

func (w *reminderWorker) tick(ctx context.Context, now time.Time) {
	open := make(map[string]bool)
	for _, s := range w.sessions.Sessions() {
		if !strings.HasPrefix(s.Key, keyPrefix) {
			continue
		}
		open[s.Key] = true

		idle := now.Sub(s.UpdatedAt)
		if idle < w.after {
			continue
		}
		if last, ok := w.reminded[s.Key]; ok && last.Equal(s.UpdatedAt) {
			continue
		}

		channelID := strings.TrimPrefix(s.Key, keyPrefix)
		msg := reminderMessage(s, idle) + "\n\n※此訊息為自動發送"
		if err := w.sendWithRetry(ctx, channelID, msg); err != nil {
			log.Printf("reminder: failed to send message to channel %s: %v", channelID, err)
			continue
		}
		w.reminded[s.Key] = s.UpdatedAt
	}

	for key := range w.reminded {
		if !open[key] {
			delete(w.reminded, key)
		}
	}
}

func reminderMessage(s *order.Session, idle time.Duration) string {
	minutes := int(idle.Minutes())
	if !s.HasRestaurant() {
		return fmt.Sprintf("提醒：點餐已開始 %d 分鐘，還沒有選擇餐廳喔！請輸入 /order 餐廳名稱", minutes)
	}
	return fmt.Sprintf("提醒：%s 的點餐已經 %d 分鐘沒有更新，目前 %d 筆。完成後請輸入 /done 結束點餐",
		s.Restaurant, minutes, len(s.Lines))
}

func (w *reminderWorker) sendWithRetry(ctx context.Context, channelID, content string) error {
	const attemptTimeout = 12 * time.Second
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		_, err := w.session.ChannelMessageSend(channelID, content, discordgo.WithContext(sendCtx))
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTemporaryOrTimeout(err) {
			return err
		}
		time.Sleep(time.Duration(300+rand.Intn(500)) * time.Millisecond)
	}
	return lastErr
}

func isTemporaryOrTimeout(err error) bool {
	if err == nil {
		return false
	}
	if ne, ok := err.(net.Error); ok {
		return ne.Timeout()
	}
	return false
}
