package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"repoctx/internal/clock"
)

// Stage names, in run order.
const (
	StageTokenizer  = "tokenizer"
	StageScan       = "scan"
	StageExtract    = "extract"
	StageBuild      = "build"
	StagePrioritize = "prioritize"
	StageFormat     = "format"
	StageWrite      = "write"
)

type ReportSignal struct {
	Code     string  `json:"code"`
	Stage    string  `json:"stage"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Path     string  `json:"path,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type ReportSummary struct {
	StageCount        int            `json:"stage_count"`
	FailedStages      int            `json:"failed_stages"`
	SectionsBuilt     int            `json:"sections_built"`
	SectionsAdmitted  int            `json:"sections_admitted"`
	TokensUsed        int            `json:"tokens_used"`
	TokenBudget       int            `json:"token_budget"`
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

// Report records what each stage of a run did.
type Report struct {
	Version     string         `json:"version"`
	Repository  string         `json:"repository"`
	GeneratedAt string         `json:"generated_at"`
	OutputPath  string         `json:"output_path"`
	Stages      []StageMetric  `json:"stages"`
	Signals     []ReportSignal `json:"signals,omitempty"`
	Summary     ReportSummary  `json:"summary"`

	clock clock.Clock
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewReport(c clock.Clock, repository, outputPath string) *Report {
	if c == nil {
		c = clock.Real()
	}
	return &Report{
		Version:     "v1",
		Repository:  repository,
		GeneratedAt: c.Now().UTC().Format(time.RFC3339),
		OutputPath:  outputPath,
		Stages:      []StageMetric{},
		Signals:     []ReportSignal{},
		clock:       c,
	}
}

func (r *Report) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: r.clock.Now().UTC()}
}

func (r *Report) EndStage(h StageHandle, counters map[string]float64, err error) {
	if r == nil || h.name == "" {
		return
	}
	finished := r.clock.Now().UTC()
	m := StageMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   cleanCounters(counters),
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.Stages = append(r.Stages, m)
}

func (r *Report) AddSignal(code, stage, severity, path, message string) {
	if r == nil {
		return
	}
	s := ReportSignal{
		Code:     strings.TrimSpace(code),
		Stage:    strings.TrimSpace(stage),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Message:  strings.TrimSpace(message),
		Path:     path,
	}
	if s.Code == "" || s.Stage == "" || s.Severity == "" || s.Message == "" {
		return
	}
	r.Signals = append(r.Signals, s)
}

// Stage looks up a finished stage by name.
func (r *Report) Stage(name string) (StageMetric, bool) {
	for _, st := range r.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageMetric{}, false
}

// Finalize orders signals by severity and fills the summary.
func (r *Report) Finalize(built, admitted, tokensUsed, budget int) {
	if r == nil {
		return
	}
	severityCount := map[string]int{
		"critical": 0,
		"warning":  0,
		"info":     0,
	}
	sort.SliceStable(r.Signals, func(i, j int) bool {
		return signalPriority(r.Signals[i].Severity) > signalPriority(r.Signals[j].Severity)
	})
	for _, s := range r.Signals {
		severityCount[s.Severity]++
	}

	failed := 0
	for _, st := range r.Stages {
		if st.Status != "ok" {
			failed++
		}
	}

	r.Summary = ReportSummary{
		StageCount:        len(r.Stages),
		FailedStages:      failed,
		SectionsBuilt:     built,
		SectionsAdmitted:  admitted,
		TokensUsed:        tokensUsed,
		TokenBudget:       budget,
		SignalsBySeverity: severityCount,
	}
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return WriteFileAtomic(path, data)
}

func cleanCounters(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func signalPriority(severity string) int {
	switch severity {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}
