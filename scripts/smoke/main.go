// Command smoke probes a running attendance-engine instance and reports
// per-endpoint status, so deploys can be gated on the core read paths.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

type probe struct {
	Name     string
	Method   string
	Path     string
	Critical bool
}

type result struct {
	Probe    probe
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	base := flag.String("base", "http://localhost:8080", "base URL of the running instance")
	facultyID := flag.String("faculty", "", "faculty id used for roster and attendance probes")
	courseID := flag.String("course", "", "course id used for roster probes")
	date := flag.String("date", "", "date (YYYY-MM-DD) used for the day attendance probe")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	probes := []probe{
		{Name: "health", Method: http.MethodGet, Path: "/health", Critical: true},
		{Name: "ready", Method: http.MethodGet, Path: "/ready", Critical: true},
		{Name: "metrics", Method: http.MethodGet, Path: "/metrics"},
	}
	if *facultyID != "" {
		probes = append(probes, probe{
			Name:     "roster courses",
			Method:   http.MethodGet,
			Path:     fmt.Sprintf("/api/v1/roster/%s/courses", url.PathEscape(*facultyID)),
			Critical: true,
		})
		if *courseID != "" {
			probes = append(probes, probe{
				Name:   "roster students",
				Method: http.MethodGet,
				Path:   fmt.Sprintf("/api/v1/roster/%s/courses/%s/students", url.PathEscape(*facultyID), url.PathEscape(*courseID)),
			})
			if *date != "" {
				query := url.Values{}
				query.Set("facultyId", *facultyID)
				query.Set("courseId", *courseID)
				query.Set("date", *date)
				probes = append(probes, probe{
					Name:   "attendance day",
					Method: http.MethodGet,
					Path:   "/api/v1/attendance/day?" + query.Encode(),
				})
			}
		}
	}

	client := &http.Client{Timeout: *timeout}
	failed := false
	for _, p := range probes {
		res := run(client, *base, p)
		report(res)
		if res.Probe.Critical && (res.Err != nil || res.Status != http.StatusOK) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func run(client *http.Client, base string, p probe) result {
	req, err := http.NewRequest(p.Method, base+p.Path, nil)
	if err != nil {
		return result{Probe: p, Err: err}
	}
	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return result{Probe: p, Duration: duration, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)
	return result{Probe: p, Status: resp.StatusCode, Duration: duration}
}

func report(res result) {
	status := "ok"
	detail := fmt.Sprintf("%d", res.Status)
	if res.Err != nil {
		status = "error"
		detail = res.Err.Error()
	} else if res.Status != http.StatusOK {
		status = "fail"
	}
	line := map[string]interface{}{
		"probe":       res.Probe.Name,
		"status":      status,
		"detail":      detail,
		"duration_ms": res.Duration.Milliseconds(),
	}
	encoded, _ := json.Marshal(line)
	fmt.Println(string(encoded))
}
