// Package store owns the on-disk layout: timestamped JSON ticker
// snapshots, the append-only change log, and per-ticker price CSVs.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"PSXPipeline/internal/model"
)

const (
	snapshotPrefix = "tickers_"
	snapshotSuffix = ".json"
	changeLogName  = "ticker_changes.log"
)

// Store writes run artifacts under the configured directories.
// Snapshot files are create-only; the change log is append-only.
type Store struct {
	DataDir     string
	MetadataDir string
}

func New(dataDir, metadataDir string) (*Store, error) {
	for _, dir := range []string{dataDir, metadataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &Store{DataDir: dataDir, MetadataDir: metadataDir}, nil
}

// SaveSnapshot writes the merged ticker list as a new timestamped JSON
// file. The filename embeds the run's own start time, so concurrent runs
// never race on the same path, and an existing file is never overwritten.
func (s *Store) SaveSnapshot(tickers []model.Ticker, runTime time.Time) (string, error) {
	stamp := runTime.Format("20060102_150405")
	path := filepath.Join(s.MetadataDir, snapshotPrefix+stamp+snapshotSuffix)

	// Never overwrite: runs landing on the same second get a suffix.
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(s.MetadataDir, fmt.Sprintf("%s%s_%d%s", snapshotPrefix, stamp, n, snapshotSuffix))
	}

	data, err := json.MarshalIndent(tickers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LatestSnapshot loads the most recent snapshot, determined by filename
// ordering (the embedded timestamp), not file modification time. A
// missing snapshot is not an error: it returns an empty list.
func (s *Store) LatestSnapshot() ([]model.Ticker, string, error) {
	matches, err := filepath.Glob(filepath.Join(s.MetadataDir, snapshotPrefix+"*"+snapshotSuffix))
	if err != nil {
		return nil, "", fmt.Errorf("list snapshots: %w", err)
	}
	if len(matches) == 0 {
		return nil, "", nil
	}
	sort.Strings(matches)
	path := matches[len(matches)-1]

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var tickers []model.Ticker
	if err := json.Unmarshal(data, &tickers); err != nil {
		return nil, "", fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return tickers, path, nil
}

// AppendChangeLog writes one human-readable block per reconciliation run
// to the append-only changes log.
func (s *Store) AppendChangeLog(events []model.ChangeEvent, runTime time.Time) error {
	path := filepath.Join(s.MetadataDir, changeLogName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open change log: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== %s ===\n", runTime.Format("2006-01-02 15:04:05"))
	writeKind(&b, events, model.ChangeAdded, "ADDED", func(e model.ChangeEvent) string {
		return "+ " + e.Symbol
	})
	writeKind(&b, events, model.ChangeRemoved, "DELETED", func(e model.ChangeEvent) string {
		return "- " + e.Symbol
	})
	writeKind(&b, events, model.ChangeRenamed, "RENAMED", func(e model.ChangeEvent) string {
		return "* " + e.PrevSymbol + " -> " + e.Symbol
	})
	if len(events) == 0 {
		b.WriteString("NO CHANGES\n")
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append change log: %w", err)
	}
	return nil
}

func writeKind(b *strings.Builder, events []model.ChangeEvent, kind model.ChangeKind, label string, line func(model.ChangeEvent) string) {
	var ofKind []model.ChangeEvent
	for _, e := range events {
		if e.Kind == kind {
			ofKind = append(ofKind, e)
		}
	}
	if len(ofKind) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", label, len(ofKind))
	for _, e := range ofKind {
		b.WriteString(line(e) + "\n")
	}
}

// WritePriceCSV writes one delimited file per ticker with the header
// date,open,high,low,close,volume, dates ascending.
func (s *Store) WritePriceCSV(symbol string, bars []model.PriceBar) (string, error) {
	path := filepath.Join(s.DataDir, symbol+".csv")

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return "", err
	}
	for _, bar := range bars {
		record := []string{
			bar.Date.Format("2006-01-02"),
			formatPrice(bar.Open),
			formatPrice(bar.High),
			formatPrice(bar.Low),
			formatPrice(bar.Close),
			strconv.FormatInt(bar.Volume, 10),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encode csv for %s: %w", symbol, err)
	}

	if err := writeFileAtomic(path, []byte(b.String())); err != nil {
		return "", fmt.Errorf("write csv for %s: %w", symbol, err)
	}
	return path, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// writeFileAtomic writes to a temp file in the target directory and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
