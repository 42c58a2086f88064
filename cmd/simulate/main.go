// simulate drives concurrent reservation traffic against a running
// api-server and reports outcome counts and latency percentiles. It is the
// tool used to observe the booking transaction under contention: for any
// date, the number of successful reservations can never exceed the number of
// published slots or the number of doses.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type simConfig struct {
	baseURL   string
	workers   int
	duration  time.Duration
	patients  int
	careDays  int
	caregiver int
}

const simPassword = "Simulate1!pw"

type metrics struct {
	total     int64
	success   int64
	conflict  int64
	errored   int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (m *metrics) record(latency time.Duration, status int) {
	atomic.AddInt64(&m.total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.success, 1)
	case status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		atomic.AddInt64(&m.conflict, 1)
	default:
		atomic.AddInt64(&m.errored, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *metrics) stats() (avg, p50, p95, max time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}

	avg = sum / time.Duration(len(sorted))
	p50 = sorted[len(sorted)*50/100]
	p95 = sorted[min(len(sorted)*95/100, len(sorted)-1)]
	max = sorted[len(sorted)-1]
	return avg, p50, p95, max
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{}
	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8080", "api-server base URL")
	flag.IntVar(&cfg.workers, "workers", 16, "concurrent reservation workers")
	flag.DurationVar(&cfg.duration, "duration", 30*time.Second, "how long to run")
	flag.IntVar(&cfg.patients, "patients", 50, "patients to register")
	flag.IntVar(&cfg.caregiver, "caregivers", 10, "caregivers to register")
	flag.IntVar(&cfg.careDays, "days", 14, "days of availability per caregiver")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	run := fmt.Sprintf("sim%d", time.Now().UnixNano()%1_000_000)

	log.Printf("preparing data set run=%s", run)
	patientTokens, dates, vaccine, err := prepare(client, cfg, run)
	if err != nil {
		log.Fatalf("prepare: %v", err)
	}

	log.Printf("starting %d workers for %s", cfg.workers, cfg.duration)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.duration)
	defer cancel()

	var m metrics
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				default:
				}

				token := patientTokens[rand.Intn(len(patientTokens))]
				date := dates[rand.Intn(len(dates))]

				start := time.Now()
				status, err := reserve(client, cfg.baseURL, token, date, vaccine)
				if err != nil {
					// transport error, not an API outcome
					m.record(time.Since(start), 0)
					continue
				}
				m.record(time.Since(start), status)
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("worker error: %v", err)
	}

	avg, p50, p95, maxLat := m.stats()
	log.Printf("done: total=%d success=%d conflict=%d error=%d",
		atomic.LoadInt64(&m.total), atomic.LoadInt64(&m.success),
		atomic.LoadInt64(&m.conflict), atomic.LoadInt64(&m.errored))
	log.Printf("latency: avg=%s p50=%s p95=%s max=%s", avg, p50, p95, maxLat)
}

// prepare registers caregivers and patients, publishes availability, stocks
// one vaccine, and returns logged-in patient tokens plus the reservable dates.
func prepare(client *http.Client, cfg simConfig, run string) (tokens []string, dates []string, vaccine string, err error) {
	vaccine = "SimVax-" + run
	start := time.Now().AddDate(0, 0, 1)
	for d := 0; d < cfg.careDays; d++ {
		dates = append(dates, start.AddDate(0, 0, d).Format("2006-01-02"))
	}

	for i := 0; i < cfg.caregiver; i++ {
		username := fmt.Sprintf("cg_%s_%d", run, i)
		if err := register(client, cfg.baseURL, "/caregivers", username); err != nil {
			return nil, nil, "", err
		}
		token, err := login(client, cfg.baseURL, "/sessions/caregiver", username)
		if err != nil {
			return nil, nil, "", err
		}
		for _, date := range dates {
			if _, err := post(client, cfg.baseURL+"/availability", token, map[string]any{"date": date}); err != nil {
				return nil, nil, "", err
			}
		}
		if i == 0 {
			if _, err := post(client, cfg.baseURL+"/vaccines", token, map[string]any{"name": vaccine, "doses": cfg.patients * 2}); err != nil {
				return nil, nil, "", err
			}
		}
	}

	for i := 0; i < cfg.patients; i++ {
		username := fmt.Sprintf("pt_%s_%d", run, i)
		if err := register(client, cfg.baseURL, "/patients", username); err != nil {
			return nil, nil, "", err
		}
		token, err := login(client, cfg.baseURL, "/sessions/patient", username)
		if err != nil {
			return nil, nil, "", err
		}
		tokens = append(tokens, token)
	}

	return tokens, dates, vaccine, nil
}

func register(client *http.Client, baseURL, path, username string) error {
	status, err := post(client, baseURL+path, "", map[string]any{
		"username": username,
		"password": simPassword,
	})
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("register %s: unexpected status %d", username, status)
	}
	return nil
}

func login(client *http.Client, baseURL, path, username string) (string, error) {
	body, err := json.Marshal(map[string]any{"username": username, "password": simPassword})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login %s: unexpected status %d", username, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func reserve(client *http.Client, baseURL, token, date, vaccine string) (int, error) {
	return post(client, baseURL+"/reservations", token, map[string]any{
		"date":    date,
		"vaccine": vaccine,
	})
}

func post(client *http.Client, url, token string, payload map[string]any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
