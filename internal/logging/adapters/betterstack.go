package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"careerpilot-utils/internal/logging/types"
)

// BetterstackAdapter ships log entries to a Betterstack-style HTTP collector
// in batches. Entries are buffered and flushed either when the batch fills
// or on a timer; the pipeline only owns formatting, the collector owns
// storage.
type BetterstackAdapter struct {
	name   string
	config BetterstackConfig
	client *http.Client

	mu     sync.Mutex
	buffer []map[string]interface{}
	stop   chan struct{}
	done   chan struct{}
}

// BetterstackConfig represents configuration for the Betterstack adapter
type BetterstackConfig struct {
	SourceToken   string        `yaml:"source_token"`
	Endpoint      string        `yaml:"endpoint"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	Timeout       time.Duration `yaml:"timeout"`
}

// NewBetterstackAdapter creates a new Betterstack adapter and starts its
// background flusher
func NewBetterstackAdapter(name string, config BetterstackConfig) (*BetterstackAdapter, error) {
	if config.SourceToken == "" {
		return nil, fmt.Errorf("source_token is required for Betterstack adapter")
	}
	if config.Endpoint == "" {
		config.Endpoint = "https://in.logs.betterstack.com"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	a := &BetterstackAdapter{
		name:   name,
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go a.flushLoop()
	return a, nil
}

// Write buffers a log entry for the next batch
func (a *BetterstackAdapter) Write(entry *types.LogEntry) error {
	payload := map[string]interface{}{
		"dt":      entry.Timestamp.Format(time.RFC3339Nano),
		"level":   entry.Level.String(),
		"message": entry.Message,
	}
	for k, v := range entry.Fields {
		payload[k] = v
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, payload)
	full := len(a.buffer) >= a.config.BatchSize
	a.mu.Unlock()

	if full {
		return a.flush()
	}
	return nil
}

// Close flushes any buffered entries and stops the background flusher
func (a *BetterstackAdapter) Close() error {
	close(a.stop)
	<-a.done
	return a.flush()
}

// Health reports whether the collector endpoint is configured
func (a *BetterstackAdapter) Health() error {
	if a.config.SourceToken == "" {
		return fmt.Errorf("betterstack adapter %s has no source token", a.name)
	}
	return nil
}

// Name returns the name of the adapter
func (a *BetterstackAdapter) Name() string {
	return a.name
}

func (a *BetterstackAdapter) flushLoop() {
	defer close(a.done)

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.flush()
		case <-a.stop:
			return
		}
	}
}

func (a *BetterstackAdapter) flush() error {
	a.mu.Lock()
	if len(a.buffer) == 0 {
		a.mu.Unlock()
		return nil
	}
	batch := a.buffer
	a.buffer = nil
	a.mu.Unlock()

	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal log batch: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.SourceToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to ship log batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("log collector responded with status %d", resp.StatusCode)
	}
	return nil
}
