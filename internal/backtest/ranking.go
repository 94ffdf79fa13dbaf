package backtest

import (
	"math"
	"sort"
)

// rankByAPR orders candidates best-funding-first. Symbol breaks exact APR
// ties so ranking never depends on map iteration order.
func rankByAPR(candidates []*Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].APR != candidates[j].APR {
			return candidates[i].APR > candidates[j].APR
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
}

// rankByConfidence orders primarily by confidence; candidates within 0.1 of
// each other are considered equally confident and fall back to APR
func rankByConfidence(candidates []*Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i].Confidence, candidates[j].Confidence
		if math.Abs(ci-cj) > 0.1 {
			return ci > cj
		}
		if candidates[i].APR != candidates[j].APR {
			return candidates[i].APR > candidates[j].APR
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
}

// selectEntries takes the top-ranked candidates that fit in the remaining
// position slots
func selectEntries(candidates []*Candidate, openCount, maxPositions int) []*Candidate {
	slots := maxPositions - openCount
	if slots <= 0 {
		return nil
	}
	if len(candidates) > slots {
		return candidates[:slots]
	}
	return candidates
}
