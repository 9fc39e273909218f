package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/maxx-dev16/Maxx-OS/store"
)

var errNoAdMessage = errors.New("no advertisement message configured, set the ad_message setting first")

// Advertiser posts a configured advertisement message on a schedule. At most
// one schedule runs at a time; starting replaces the previous one.
type Advertiser struct {
	session *discordgo.Session
	store   store.Store
	log     zerolog.Logger

	mu       sync.Mutex
	stop     chan struct{}
	interval time.Duration
}

func NewAdvertiser(session *discordgo.Session, st store.Store, log zerolog.Logger) *Advertiser {
	return &Advertiser{session: session, store: st, log: log}
}

// Start begins posting into the channel every interval. An already running
// schedule is replaced.
func (a *Advertiser) Start(channelID string, interval time.Duration) error {
	if _, err := a.message(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		close(a.stop)
	}
	stop := make(chan struct{})
	a.stop = stop
	a.interval = interval

	go a.run(channelID, interval, stop)
	return nil
}

func (a *Advertiser) run(channelID string, interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := a.PostNow(channelID); err != nil {
				a.log.Warn().Err(err).Str("channel", channelID).Msg("advertisement post failed")
			}
		}
	}
}

// Stop halts the schedule. Safe to call when not running.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
}

// Status reports whether a schedule is running and its interval.
func (a *Advertiser) Status() (bool, time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stop != nil, a.interval
}

// PostNow posts the configured advertisement once.
func (a *Advertiser) PostNow(channelID string) error {
	msg, err := a.message()
	if err != nil {
		return err
	}
	_, err = a.session.ChannelMessageSend(channelID, msg)
	return err
}

func (a *Advertiser) message() (string, error) {
	msg, err := a.store.GetSetting(context.Background(), "ad_message")
	if err != nil || msg == "" {
		return "", errNoAdMessage
	}
	return msg, nil
}
