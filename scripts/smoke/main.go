// Command smoke exercises the portal's read endpoints against a running
// instance and reports per-endpoint status and latency. It needs a valid
// access token; mutations are deliberately out of scope.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type target struct {
	Name string
	Path string
}

func main() {
	var (
		base    string
		token   string
		student string
		session string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "Portal API base URL")
	flag.StringVar(&token, "token", os.Getenv("PORTAL_TOKEN"), "Bearer access token")
	flag.StringVar(&student, "student", "", "Student ID for schedule/overview probes")
	flag.StringVar(&session, "session", "", "Session ID for the roster probe")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := []target{
		{Name: "health", Path: "/health"},
		{Name: "ready", Path: "/ready"},
		{Name: "metrics", Path: "/metrics"},
	}
	if token != "" {
		targets = append(targets, target{Name: "reservations", Path: "/api/v1/reservations"})
		if student != "" {
			targets = append(targets,
				target{Name: "schedule", Path: "/api/v1/students/" + student + "/schedule"},
				target{Name: "overview", Path: "/api/v1/students/" + student + "/overview"},
			)
		}
		if session != "" {
			targets = append(targets, target{Name: "roster", Path: "/api/v1/sessions/" + session + "/attendance"})
		}
	}

	client := &http.Client{Timeout: timeout}
	failures := 0
	for _, tgt := range targets {
		status, duration, err := probe(client, base+tgt.Path, token)
		if err != nil {
			failures++
			fmt.Printf("FAIL %-14s %v\n", tgt.Name, err)
			continue
		}
		ok := status >= 200 && status < 300
		label := "OK  "
		if !ok {
			failures++
			label = "FAIL"
		}
		fmt.Printf("%s %-14s %d %s\n", label, tgt.Name, status, duration.Round(time.Millisecond))
	}

	if failures > 0 {
		log.Fatalf("%d of %d probes failed", failures, len(targets))
	}
}

func probe(client *http.Client, url, token string) (int, time.Duration, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return 0, duration, err
	}
	defer resp.Body.Close() //nolint:errcheck

	// Drain and validate the envelope so a 200 with malformed JSON still fails.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, duration, err
	}
	if len(raw) > 0 && !json.Valid(raw) && resp.Header.Get("Content-Type") == "application/json" {
		return resp.StatusCode, duration, fmt.Errorf("malformed JSON body")
	}

	return resp.StatusCode, duration, nil
}
