// Package reconcile diffs two ticker snapshots and classifies every
// symbol as added, removed, renamed, or unchanged.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"PSXPipeline/internal/model"
)

// Options tunes the rename-detection heuristic. Two delisted/listed
// candidates are paired as a rename when their names are equal, when one
// contains the other, or when both names are longer than NameLengthFloor
// and share a word longer than WordLengthFloor.
type Options struct {
	NameLengthFloor int
	WordLengthFloor int
}

// DefaultOptions returns the heuristic thresholds used by the pipeline.
func DefaultOptions() Options {
	return Options{NameLengthFloor: 10, WordLengthFloor: 3}
}

// Conflict reports a duplicate symbol within one input set. The first
// occurrence wins; the duplicate record is dropped.
type Conflict struct {
	Symbol  string
	Set     string // "previous" or "current"
	Dropped model.Ticker
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Merged    []model.Ticker
	Events    []model.ChangeEvent
	Conflicts []Conflict
}

// Reconcile compares the current ticker set against the previously
// persisted one. Attributes from current win for symbols present in
// both; added/removed symbols are paired into renames when their names
// match the heuristic. Events and the merged set come back sorted so
// repeated runs over identical input are byte-stable.
func Reconcile(previous, current []model.Ticker, opts Options, now time.Time) Result {
	var res Result

	prevBySym := indexBySymbol(previous, "previous", &res.Conflicts)
	currBySym := indexBySymbol(current, "current", &res.Conflicts)

	var added, removed []string
	for sym := range currBySym {
		if _, ok := prevBySym[sym]; !ok {
			added = append(added, sym)
		}
	}
	for sym := range prevBySym {
		if _, ok := currBySym[sym]; !ok {
			removed = append(removed, sym)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	// Pair removed/added candidates with matching names into renames.
	type rename struct{ old, new string }
	var renames []rename
	if len(added) > 0 && len(removed) > 0 {
		usedNew := make(map[string]bool)
		var stillRemoved []string
		for _, oldSym := range removed {
			matched := ""
			for _, newSym := range added {
				if usedNew[newSym] {
					continue
				}
				if namesMatch(prevBySym[oldSym].Name, currBySym[newSym].Name, opts) {
					matched = newSym
					break
				}
			}
			if matched != "" {
				renames = append(renames, rename{old: oldSym, new: matched})
				usedNew[matched] = true
			} else {
				stillRemoved = append(stillRemoved, oldSym)
			}
		}
		removed = stillRemoved
		var stillAdded []string
		for _, sym := range added {
			if !usedNew[sym] {
				stillAdded = append(stillAdded, sym)
			}
		}
		added = stillAdded
	}

	// Merged set: every current record, with current attributes winning
	// over previous ones. Renamed targets are already in current.
	res.Merged = make([]model.Ticker, 0, len(currBySym))
	for _, t := range currBySym {
		res.Merged = append(res.Merged, t)
	}
	sort.Slice(res.Merged, func(i, j int) bool { return res.Merged[i].Symbol < res.Merged[j].Symbol })

	for _, sym := range added {
		res.Events = append(res.Events, model.ChangeEvent{
			Kind: model.ChangeAdded, Symbol: sym, Timestamp: now,
		})
	}
	for _, sym := range removed {
		res.Events = append(res.Events, model.ChangeEvent{
			Kind: model.ChangeRemoved, Symbol: sym, Timestamp: now,
		})
	}
	for _, r := range renames {
		res.Events = append(res.Events, model.ChangeEvent{
			Kind: model.ChangeRenamed, Symbol: r.new, PrevSymbol: r.old, Timestamp: now,
		})
	}
	sort.Slice(res.Events, func(i, j int) bool {
		if res.Events[i].Kind != res.Events[j].Kind {
			return res.Events[i].Kind < res.Events[j].Kind
		}
		return res.Events[i].Symbol < res.Events[j].Symbol
	})

	return res
}

func indexBySymbol(tickers []model.Ticker, set string, conflicts *[]Conflict) map[string]model.Ticker {
	out := make(map[string]model.Ticker, len(tickers))
	for _, t := range tickers {
		if _, ok := out[t.Symbol]; ok {
			*conflicts = append(*conflicts, Conflict{Symbol: t.Symbol, Set: set, Dropped: t})
			continue
		}
		out[t.Symbol] = t
	}
	return out
}

// namesMatch implements the rename heuristic on case-folded names.
func namesMatch(oldName, newName string, opts Options) bool {
	a := strings.ToLower(strings.TrimSpace(oldName))
	b := strings.ToLower(strings.TrimSpace(newName))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return true
	}
	if len(a) > opts.NameLengthFloor && len(b) > opts.NameLengthFloor {
		for _, word := range strings.Fields(a) {
			if len(word) > opts.WordLengthFloor && strings.Contains(b, word) {
				return true
			}
		}
	}
	return false
}
