// Package report merges a batch of extractor results into a serializable
// summary.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kayz/osprey/internal/logger"
	"github.com/kayz/osprey/internal/services"
)

// Summary holds the batch-level counters.
type Summary struct {
	TotalSearches     int       `json:"total_searches"`
	Successful        int       `json:"successful_searches"`
	Failed            int       `json:"failed_searches"`
	TotalResponseTime float64   `json:"total_response_time"`
	GeneratedAt       time.Time `json:"timestamp"`
}

// URLFinding is a URL discovered inside a result's data fields.
type URLFinding struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Field  string `json:"field"`
}

// ProfileFinding records a result that confirmed a profile exists.
type ProfileFinding struct {
	Service string         `json:"service"`
	Query   string         `json:"query"`
	Data    map[string]any `json:"data"`
}

// ServiceGroup keeps one service's results together. Groups are ordered by
// first appearance in the batch so serialization stays reproducible.
type ServiceGroup struct {
	Service string            `json:"service"`
	Results []services.Result `json:"results"`
}

type Report struct {
	Summary        Summary          `json:"search_summary"`
	Services       []ServiceGroup   `json:"results_by_service"`
	URLsDiscovered []URLFinding     `json:"urls_discovered"`
	ProfilesFound  []ProfileFinding `json:"profiles_found"`
}

// Aggregate builds a report from a batch. A malformed record (no service
// name) is skipped with a logged warning rather than aborting the report.
func Aggregate(results []services.Result) *Report {
	r := &Report{
		Summary:        Summary{GeneratedAt: time.Now()},
		URLsDiscovered: []URLFinding{},
		ProfilesFound:  []ProfileFinding{},
	}

	groupIndex := map[string]int{}

	for _, res := range results {
		if res.Service == "" {
			logger.Warnf("report: skipping malformed result for query %q (no service name)", res.Query)
			continue
		}

		r.Summary.TotalSearches++
		if res.Success {
			r.Summary.Successful++
		} else {
			r.Summary.Failed++
		}
		r.Summary.TotalResponseTime += res.ResponseTime

		idx, ok := groupIndex[res.Service]
		if !ok {
			idx = len(r.Services)
			groupIndex[res.Service] = idx
			r.Services = append(r.Services, ServiceGroup{Service: res.Service})
		}
		r.Services[idx].Results = append(r.Services[idx].Results, res)

		if res.Success {
			r.collectFindings(res)
		}
	}
	return r
}

func (r *Report) collectFindings(res services.Result) {
	keys := make([]string, 0, len(res.Data))
	for k := range res.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s, ok := res.Data[k].(string); ok && isWellFormedURL(s) {
			r.URLsDiscovered = append(r.URLsDiscovered, URLFinding{
				URL:    s,
				Source: res.Service,
				Field:  k,
			})
		}
	}

	if exists, _ := res.Data["profile_exists"].(bool); exists {
		r.ProfilesFound = append(r.ProfilesFound, ProfileFinding{
			Service: res.Service,
			Query:   res.Query,
			Data:    res.Data,
		})
	} else if found, ok := res.Data["profiles_found"].(int); ok && found > 0 {
		r.ProfilesFound = append(r.ProfilesFound, ProfileFinding{
			Service: res.Service,
			Query:   res.Query,
			Data:    res.Data,
		})
	}
}

func isWellFormedURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// JSON serializes the full report.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ParseJSON reverses JSON; round-tripping preserves the summary counts.
func ParseJSON(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// csvHeader is the fixed column set of the tabular form.
var csvHeader = []string{
	"service", "query", "query_type", "success",
	"response_time", "status_code", "error", "data_keys", "timestamp",
}

// CSV renders one row per result with the fixed column set.
func (r *Report) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, group := range r.Services {
		for _, res := range group.Results {
			keys := make([]string, 0, len(res.Data))
			for k := range res.Data {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			row := []string{
				res.Service,
				res.Query,
				res.QueryType,
				strconv.FormatBool(res.Success),
				strconv.FormatFloat(res.ResponseTime, 'f', 3, 64),
				strconv.Itoa(res.StatusCode),
				res.Error,
				strings.Join(keys, ", "),
				res.Timestamp.Format(time.RFC3339),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// Text renders the human-readable form used by the CLI.
func (r *Report) Text() string {
	var sb strings.Builder
	sb.WriteString("=== OSINT Search Results ===\n\n")

	for _, group := range r.Services {
		for _, res := range group.Results {
			status := "FAIL"
			if res.Success {
				status = "OK"
			}
			fmt.Fprintf(&sb, "[%s] %s - %s (%.2fs)\n", status, res.Service, res.QueryType, res.ResponseTime)
			if res.Error != "" {
				fmt.Fprintf(&sb, "      error: %s\n", res.Error)
			}
			keys := make([]string, 0, len(res.Data))
			for k := range res.Data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if s, ok := res.Data[k].(string); ok {
					fmt.Fprintf(&sb, "      %s: %s\n", k, s)
				}
			}
		}
	}

	fmt.Fprintf(&sb, "\nSummary: %d/%d searches successful (%.2fs total)\n",
		r.Summary.Successful, r.Summary.TotalSearches, r.Summary.TotalResponseTime)

	if len(r.URLsDiscovered) > 0 {
		sb.WriteString("\nDiscovered URLs:\n")
		for _, f := range r.URLsDiscovered {
			fmt.Fprintf(&sb, "  %s (%s, %s)\n", f.URL, f.Source, f.Field)
		}
	}
	return sb.String()
}

// Save dumps the JSON form to path; an empty path derives a timestamped
// filename. The dump is best-effort, last write wins.
func (r *Report) Save(path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("osprey_report_%s.json", time.Now().Format("20060102_150405"))
	}
	data, err := r.JSON()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	logger.Infof("report: saved to %s", path)
	return path, nil
}
