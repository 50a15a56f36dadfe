// Package main is a stress testing tool for the admin live feed.
//
// It opens many feed connections with one admin token, optionally drives
// traffic through the report ingestion route, and counts what the
// connections receive.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"adminhub/internal/adminclient"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	ReportsSent          int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

func main() {
	base := flag.String("base", "http://localhost:8375/admin/v1", "admin API base URL")
	email := flag.String("email", "root@adminhub.local", "admin email")
	password := flag.String("password", "", "admin password")
	clients := flag.Int("clients", 50, "number of concurrent feed connections")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	reportEvery := flag.Duration("report-every", 0, "file a report against -event at this interval (0 disables)")
	eventID := flag.Uint("event", 0, "event post id targeted by generated reports")
	flag.Parse()

	log.Printf("🚀 Starting admin feed stress test")
	log.Printf("Target: %s", *base)
	log.Printf("Clients: %d", *clients)
	log.Printf("Duration: %v", *duration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := adminclient.New(*base).Login(ctx, *email, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in successfully")

	feedURL, err := feedURL(*base, res.Token)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	var wg sync.WaitGroup
	for range *clients {
		wg.Add(1)
		go runClient(runCtx, feedURL, &wg)
		time.Sleep(20 * time.Millisecond)
	}

	if *reportEvery > 0 && *eventID > 0 {
		wg.Add(1)
		go runReporter(runCtx, *base, res.Token, *eventID, *reportEvery, &wg)
	}

	<-runCtx.Done()
	if ctx.Err() != nil {
		log.Println("🛑 Interrupted by user")
	} else {
		log.Println("⏱️  Test duration reached")
	}

	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics()
}

func feedURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

func runClient(ctx context.Context, target string, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	c, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		<-ctx.Done()
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if ctx.Err() == nil {
				atomic.AddInt64(&metrics.Errors, 1)
			}
			return
		}
		atomic.AddInt64(&metrics.EventsReceived, 1)
	}
}

// runReporter files reports so every connection receives report.created.
func runReporter(ctx context.Context, base, token string, eventID uint, every time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			body, _ := json.Marshal(map[string]interface{}{
				"target_type": "POST",
				"target_id":   eventID,
				"reason":      "feed stress test",
			})
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/report", bytes.NewReader(body))
			if err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(req)
			if err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.ReportsSent, 1)
		}
	}
}

func printMetrics() {
	log.Println("\n📊 Test Results")
	log.Println("===============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Reports Sent: %d", atomic.LoadInt64(&metrics.ReportsSent))
	log.Printf("Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
