package models

import (
	"fmt"
	"sync"
)

// ResearchState is the mutable record one run threads through the workflow.
// Each analyst owns exactly one findings slot; the setter is mutex-guarded
// because map writes from parallel branches are not safe even on distinct
// keys, and it refuses overwrites so no task can clobber a sibling's entry.
type ResearchState struct {
	Ticker string

	mu             sync.Mutex
	snapshot       *MarketSnapshot
	findings       map[string]Finding
	recommendation *Recommendation
}

func NewResearchState(ticker string) *ResearchState {
	return &ResearchState{
		Ticker:   ticker,
		findings: make(map[string]Finding),
	}
}

func (s *ResearchState) SetSnapshot(snap *MarketSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

func (s *ResearchState) Snapshot() *MarketSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// SetFinding records one analyst's finding. Duplicate analyst names are an
// error: the slot is written at most once per run.
func (s *ResearchState) SetFinding(f Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.findings[f.Analyst]; exists {
		return fmt.Errorf("finding for analyst %q already recorded", f.Analyst)
	}
	s.findings[f.Analyst] = f
	return nil
}

// Findings returns a copy of the findings map.
func (s *ResearchState) Findings() map[string]Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Finding, len(s.findings))
	for k, v := range s.findings {
		out[k] = v
	}
	return out
}

func (s *ResearchState) FindingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

func (s *ResearchState) SetRecommendation(rec Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendation = &rec
}

// Recommendation is nil until the synthesis stage has completed.
func (s *ResearchState) Recommendation() *Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recommendation
}
