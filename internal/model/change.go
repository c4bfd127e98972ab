package model

import "time"

// ChangeKind classifies a ticker-list change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "ADDED"
	ChangeRemoved ChangeKind = "REMOVED"
	ChangeRenamed ChangeKind = "RENAMED"
)

// ChangeEvent records one change between two ticker snapshots.
// PrevSymbol is set only for renames.
type ChangeEvent struct {
	Kind       ChangeKind `json:"kind"`
	Symbol     string     `json:"symbol"`
	PrevSymbol string     `json:"prev_symbol,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
