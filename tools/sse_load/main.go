// Command sse_load opens many concurrent subscribers on a coinboard event stream
// and reports connection errors and per-event-type counts.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type stats struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64

	mu     sync.Mutex
	byType map[string]int64
}

func newStats() *stats {
	return &stats{byType: make(map[string]int64)}
}

func (s *stats) count(event string) {
	s.mu.Lock()
	s.byType[event]++
	s.mu.Unlock()
}

func (s *stats) events() (total int64, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.byType))
	for name, n := range s.byType {
		names = append(names, name)
		total += n
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, s.byType[name]))
	}

	return total, strings.Join(parts, " ")
}

// readStream counts complete SSE frames by event name until the body ends.
// Frames without an event line count as "message"; comments are skipped.
func readStream(body io.Reader, st *stats) error {
	sc := bufio.NewScanner(body)
	event, hasData := "", false

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if hasData {
				if event == "" {
					event = "message"
				}
				st.count(event)
			}
			event, hasData = "", false
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			hasData = true
		}
	}

	if err := sc.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

func main() {
	var (
		targetURL    string
		connections  int
		testDuration time.Duration
		rampUp       time.Duration
		lastEventID  string
	)

	flag.StringVar(&targetURL, "url", "http://localhost:8000/api/events/stream", "SSE endpoint URL")
	flag.IntVar(&connections, "conns", 1000, "number of concurrent connections to open")
	flag.DurationVar(&testDuration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	flag.DurationVar(&rampUp, "ramp", 0, "ramp-up duration (spread connection starts across this window)")
	flag.StringVar(&lastEventID, "last-event-id", "", "resume index sent as Last-Event-ID")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if connections <= 0 {
		logger.Fatal("invalid conns", zap.Int("conns", connections))
	}

	if rampUp == 0 && connections > 100 {
		// 1 second per 500 connections
		rampUp = max(time.Duration(connections/500)*time.Second, time.Second)
		logger.Info("using default ramp-up", zap.Duration("ramp", rampUp))
	}

	logger.Info("starting SSE load",
		zap.String("url", targetURL), zap.Int("conns", connections),
		zap.Duration("duration", testDuration), zap.Duration("ramp", rampUp))

	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     connections + 100,
			MaxIdleConns:        connections + 100,
			MaxIdleConnsPerHost: connections + 100,
			DisableCompression:  true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if testDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, testDuration)
		defer cancel()
	}

	st := newStats()
	start := time.Now()

	var interval time.Duration
	if rampUp > 0 {
		interval = rampUp / time.Duration(connections)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				total, summary := st.events()
				logger.Info("status",
					zap.Int64("connected", st.connected.Load()),
					zap.Int64("connect_errs", st.connectErrs.Load()),
					zap.Int64("stream_errs", st.streamErrs.Load()),
					zap.Int64("events", total),
					zap.String("by_type", summary),
					zap.Duration("elapsed", time.Since(start).Truncate(time.Second)))
			}
		}
	}()

	var g errgroup.Group
	for i := 0; i < connections && ctx.Err() == nil; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}

		g.Go(func() error {
			subscribe(ctx, client, targetURL, lastEventID, st)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := max(time.Since(start), time.Millisecond)
	total, summary := st.events()

	fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d events=%d [%s] elapsed=%s events/s=%.2f\n",
		st.connected.Load(), st.connectErrs.Load(), st.streamErrs.Load(),
		total, summary, elapsed.Truncate(time.Millisecond), float64(total)/elapsed.Seconds())

	if st.connectErrs.Load() > 0 {
		os.Exit(1)
	}
}

func subscribe(ctx context.Context, client *http.Client, url, lastEventID string, st *stats) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		st.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			st.connectErrs.Add(1)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		st.connectErrs.Add(1)
		return
	}

	st.connected.Add(1)
	if err := readStream(resp.Body, st); err != nil && ctx.Err() == nil {
		st.streamErrs.Add(1)
	}
}
