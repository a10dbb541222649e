// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"
)

// Outcome is the terminal state of one item.
type Outcome string

const (
	Success     Outcome = "success"
	Failure     Outcome = "failure"
	Interrupted Outcome = "interrupted"
)

// Result is what happened to one item. Status is the HTTP status when a
// response was received; Err is set for Failure and Interrupted.
type Result struct {
	DownloadID string
	URL        string
	Path       string
	Bytes      int64
	Outcome    Outcome
	Status     int
	Err        error
}

// Summary counts results by outcome.
type Summary struct {
	Succeeded   int   `yaml:"succeeded"`
	Failed      int   `yaml:"failed"`
	Interrupted int   `yaml:"interrupted"`
	Bytes       int64 `yaml:"bytes"`
}

// Total returns the number of results summarized.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Interrupted
}

// HasFailures reports whether any item did not succeed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0 || s.Interrupted > 0
}

// Summarize counts results by outcome.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case Success:
			s.Succeeded++
			s.Bytes += r.Bytes
		case Interrupted:
			s.Interrupted++
		default:
			s.Failed++
		}
	}
	return s
}

type reportEntry struct {
	DownloadID string  `yaml:"download_id"`
	Outcome    Outcome `yaml:"outcome"`
	Path       string  `yaml:"path,omitempty"`
	Bytes      int64   `yaml:"bytes,omitempty"`
	Status     int     `yaml:"status,omitempty"`
	Error      string  `yaml:"error,omitempty"`
}

type report struct {
	Summary   Summary       `yaml:"summary"`
	Results   []reportEntry `yaml:"results"`
	Timestamp time.Time     `yaml:"timestamp"`
}

// WriteReport saves results to a YAML file, sorted by download id.
func WriteReport(path string, results []Result) error {
	rep := report{Summary: Summarize(results), Timestamp: time.Now().UTC()}
	for _, r := range results {
		e := reportEntry{
			DownloadID: r.DownloadID,
			Outcome:    r.Outcome,
			Path:       r.Path,
			Bytes:      r.Bytes,
			Status:     r.Status,
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		rep.Results = append(rep.Results, e)
	}
	sort.Slice(rep.Results, func(i, j int) bool {
		return rep.Results[i].DownloadID < rep.Results[j].DownloadID
	})

	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("marshaling download report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
