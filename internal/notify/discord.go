// Package notify renders and delivers role notifications to Discord
// channels over the REST API, with retry on transient failures and
// rate-limit pacing.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

const defaultBaseURL = "https://discord.com/api/v10"

type Config struct {
	Token       string
	Channels    []string
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// BaseURL and Client are overridable for tests.
	BaseURL string
	Client  *http.Client

	// MinInterval paces consecutive sends across all channels.
	MinInterval time.Duration
}

// Sender delivers messages to the configured channels. Channels that keep
// failing are blacklisted for the process lifetime; a rate-limit response
// pauses every pending send until the transport's retry-after elapses.
type Sender struct {
	token    string
	channels []string
	baseURL  string
	client   *http.Client

	maxAttempts int
	backoffBase time.Duration
	backoffMax  time.Duration
	minInterval time.Duration

	mu          sync.Mutex
	lastSent    time.Time
	pausedUntil time.Time
	failures    map[string]int
	blacklist   map[string]bool
}

func NewSender(cfg Config) *Sender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 30 * time.Second
	}
	return &Sender{
		token:       cfg.Token,
		channels:    cfg.Channels,
		baseURL:     cfg.BaseURL,
		client:      cfg.Client,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		minInterval: cfg.MinInterval,
		failures:    make(map[string]int),
		blacklist:   make(map[string]bool),
	}
}

// Send fans the message out to every usable channel. It succeeds when at
// least one channel accepted the message; otherwise it returns the last
// failure so the caller can decide whether the key stays uncommitted.
func (s *Sender) Send(ctx context.Context, key, text string) error {
	var delivered int
	var lastErr error

	for _, channel := range s.channels {
		if s.isBlacklisted(channel) {
			continue
		}
		if err := s.sendToChannel(ctx, key, channel, text); err != nil {
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered > 0 {
		return nil
	}
	if lastErr == nil {
		lastErr = &DispatchError{Kind: KindPermanent, Err: fmt.Errorf("no usable channels")}
	}
	return lastErr
}

func (s *Sender) sendToChannel(ctx context.Context, key, channel, text string) error {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.pace(ctx); err != nil {
			return &DispatchError{Kind: KindTransient, Err: err}
		}

		err := s.post(ctx, channel, text)
		s.markSent()
		if err == nil {
			s.clearFailures(channel)
			log.Printf("[discord] key=%s sent to channel %s", key, channel)
			return nil
		}
		lastErr = err

		var de *DispatchError
		switch KindOf(err) {
		case KindPermanent:
			log.Printf("[discord] key=%s channel=%s permanent failure, abandoning: %v", key, channel, err)
			s.recordFailure(channel)
			return err
		case KindRateLimited:
			de = asDispatchError(err)
			log.Printf("[discord] key=%s channel=%s attempt=%d/%d rate limited, pausing %s",
				key, channel, attempt, s.maxAttempts, de.RetryAfter)
			s.pauseAll(de.RetryAfter)
		default:
			log.Printf("[discord] key=%s channel=%s attempt=%d/%d transient failure: %v",
				key, channel, attempt, s.maxAttempts, err)
			if attempt < s.maxAttempts {
				if err := sleep(ctx, s.backoff(attempt)); err != nil {
					return &DispatchError{Kind: KindTransient, Err: err}
				}
			}
		}
	}

	log.Printf("[discord] key=%s channel=%s retries exhausted after %d attempts", key, channel, s.maxAttempts)
	s.recordFailure(channel)
	return lastErr
}

func (s *Sender) post(ctx context.Context, channel, text string) error {
	payload, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return &DispatchError{Kind: KindPermanent, Err: err}
	}

	url := fmt.Sprintf("%s/channels/%s/messages", s.baseURL, channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &DispatchError{Kind: KindPermanent, Err: err}
	}
	req.Header.Set("Authorization", "Bot "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &DispatchError{Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	var parsed discordResponse
	_ = json.NewDecoder(resp.Body).Decode(&parsed)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := time.Duration(parsed.RetryAfter * float64(time.Second))
		if retryAfter <= 0 {
			retryAfter = s.backoffBase
		}
		return &DispatchError{
			Kind:       KindRateLimited,
			RetryAfter: retryAfter,
			Err:        fmt.Errorf("discord rate limit: %s", parsed.Message),
		}
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return &DispatchError{
			Kind: KindPermanent,
			Err:  fmt.Errorf("discord error %d: %s", resp.StatusCode, parsed.Message),
		}
	default:
		return &DispatchError{
			Kind: KindTransient,
			Err:  fmt.Errorf("discord error %d: %s", resp.StatusCode, parsed.Message),
		}
	}
}

type discordResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"`
}

// pace waits out the min-interval spacing and any global rate-limit pause.
func (s *Sender) pace(ctx context.Context) error {
	for {
		s.mu.Lock()
		wait := time.Until(s.lastSent.Add(s.minInterval))
		if pause := time.Until(s.pausedUntil); pause > wait {
			wait = pause
		}
		s.mu.Unlock()

		if wait <= 0 {
			return nil
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (s *Sender) markSent() {
	s.mu.Lock()
	s.lastSent = time.Now()
	s.mu.Unlock()
}

func (s *Sender) pauseAll(d time.Duration) {
	s.mu.Lock()
	if until := time.Now().Add(d); until.After(s.pausedUntil) {
		s.pausedUntil = until
	}
	s.mu.Unlock()
}

func (s *Sender) backoff(attempt int) time.Duration {
	d := s.backoffBase << (attempt - 1)
	if d > s.backoffMax {
		d = s.backoffMax
	}
	return d
}

func (s *Sender) isBlacklisted(channel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[channel]
}

func (s *Sender) recordFailure(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[channel]++
	if s.failures[channel] >= s.maxAttempts {
		log.Printf("[discord] channel %s failed %d times, blacklisting", channel, s.failures[channel])
		s.blacklist[channel] = true
	}
}

func (s *Sender) clearFailures(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, channel)
}

func asDispatchError(err error) *DispatchError {
	if de, ok := err.(*DispatchError); ok {
		return de
	}
	return &DispatchError{Kind: KindTransient, Err: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
