package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL        = "http://127.0.0.1:8080"
	numWorkers     = 20
	testDuration   = 10 * time.Second
	uploadEvery    = 200 * time.Millisecond
	rolloverWait   = 70 * time.Second
	dateLayout     = "2006-01-02"
	statusEndpoint = "GET /"
	uploadEndpoint = "POST /upload_state"
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

var token = os.Getenv("UPLOAD_TOKEN")

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	limited   int64
	latencies []time.Duration
}

type snapshot struct {
	Date           string `json:"date"`
	TodayOnSeconds int64  `json:"today_on_seconds"`
	Coins          int64  `json:"coins"`
}

type statusBody struct {
	TimerState      *snapshot `json:"timer_state"`
	LastSentForDate *string   `json:"last_sent_for_date"`
	PendingForDate  *string   `json:"pending_for_date"`
}

// timer mimics the study timer client: seconds and coins only grow within a
// day and reset when the date changes.
type timer struct {
	mu    sync.Mutex
	state snapshot
}

func (t *timer) tick(d time.Duration) snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.TodayOnSeconds += int64(d.Seconds()*10) + 1
	t.state.Coins = t.state.TodayOnSeconds / 600
	return t.state
}

func (t *timer) rollover(date string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = snapshot{Date: date}
}

func main() {
	fmt.Println("=== StudyMail Timer Simulation ===")
	fmt.Printf("Workers: %d | Duration: %s | Upload every: %s\n\n", numWorkers, testDuration, uploadEvery)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// a far-past day keeps the simulation clear of a real client's dates
	day := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &timer{}
	clock.rollover(day.Format(dateLayout))

	fmt.Printf("\n--- Phase 1: Study session on %s ---\n", day.Format(dateLayout))
	runPhase(testDuration, 1, func(_ *rand.Rand) result {
		time.Sleep(uploadEvery)
		return doUpload(clock.tick(uploadEvery))
	})

	closed := day.Format(dateLayout)
	day = day.AddDate(0, 0, 1)
	clock.rollover(day.Format(dateLayout))
	fmt.Printf("\n--- Phase 2: Rollover to %s, expecting a summary for %s ---\n", day.Format(dateLayout), closed)
	doUpload(clock.tick(uploadEvery))
	waitForSummary(closed)

	fmt.Println("\n--- Phase 3: Mixed load (20% upload, 80% status) ---")
	runPhase(testDuration, numWorkers, func(rng *rand.Rand) result {
		if rng.Float64() < 0.20 {
			return doUpload(clock.tick(uploadEvery))
		}
		return doStatus()
	})
}

func waitForSummary(date string) {
	deadline := time.Now().Add(rolloverWait)
	for time.Now().Before(deadline) {
		st, err := fetchStatus()
		if err == nil {
			switch {
			case st.LastSentForDate != nil && *st.LastSentForDate == date:
				fmt.Printf("  summary for %s delivered\n", date)
				return
			case st.PendingForDate != nil && *st.PendingForDate == date:
				fmt.Printf("  summary for %s pending (mail transport failing?), still waiting\n", date)
			}
		}
		time.Sleep(2 * time.Second)
	}
	fmt.Printf("  FAILED: no summary for %s within %s\n", date, rolloverWait)
}

func runPhase(duration time.Duration, workers int, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.status == http.StatusTooManyRequests {
				s.limited++
			} else if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors, totalLimited int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %6s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "429", "Avg", "P50", "P99")
	fmt.Println("  " + strings.Repeat("-", 80))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors
		totalLimited += s.limited

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %6d %10s %10s %10s\n",
			ep, s.count, s.errors, s.limited,
			fmtDur(avgDuration(s.latencies)), fmtDur(percentile(s.latencies, 0.50)), fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 80))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | Rate limited: %d | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, totalLimited, rps)
}

func doUpload(s snapshot) result {
	data, _ := json.Marshal(map[string]interface{}{
		"token": token,
		"data":  s,
	})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/upload_state", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{uploadEndpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{uploadEndpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func doStatus() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/")
	lat := time.Since(start)
	if err != nil {
		return result{statusEndpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{statusEndpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func fetchStatus() (*statusBody, error) {
	resp, err := httpClient.Get(baseURL + "/")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var st statusBody
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
