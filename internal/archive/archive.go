package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/chrissnell/stormtide/internal/types"
)

// SampleRow is the on-disk layout of one sample.
type SampleRow struct {
	TimestampMs int64   `parquet:"timestamp_ms"`
	Value       float64 `parquet:"value"`
	Quality     int32   `parquet:"quality"`
}

func sampleToRow(s types.Sample) SampleRow {
	return SampleRow{TimestampMs: s.TimestampMs, Value: s.Value, Quality: int32(s.Quality)}
}

func rowToSample(r SampleRow) types.Sample {
	return types.Sample{TimestampMs: r.TimestampMs, Value: r.Value, Quality: types.QualityFlag(r.Quality)}
}

// Store reads and writes series archives.
type Store struct {
	opts Options
}

// NewStore creates a Store.
func NewStore(opts Options) *Store {
	return &Store{opts: opts}
}

// Write persists series at path, replacing any existing archive atomically.
func (s *Store) Write(path string, series types.TimeSeries) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	meta, err := json.Marshal(series.Meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	writer := parquet.NewGenericWriter[SampleRow](tmp,
		parquet.Compression(s.opts.Compression.codec()),
		parquet.KeyValueMetadata(MetadataKey, string(meta)),
	)

	rows := make([]SampleRow, len(series.Samples))
	for i, sample := range series.Samples {
		rows[i] = sampleToRow(sample)
	}
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit archive: %w", err)
	}
	committed = true
	return nil
}

// Read loads a whole archive.
func (s *Store) Read(path string) (types.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.TimeSeries{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return types.TimeSeries{}, fmt.Errorf("stat file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size(), parquet.ReadBufferSize(1024*1024))
	if err != nil {
		return types.TimeSeries{}, fmt.Errorf("open parquet: %w", err)
	}

	var series types.TimeSeries
	if raw, ok := pf.Lookup(MetadataKey); ok {
		if err := json.Unmarshal([]byte(raw), &series.Meta); err != nil {
			return types.TimeSeries{}, fmt.Errorf("decode metadata: %w", err)
		}
	}

	rows, err := readRows(f)
	if err != nil {
		return types.TimeSeries{}, err
	}
	series.Samples = make([]types.Sample, len(rows))
	for i, r := range rows {
		series.Samples[i] = rowToSample(r)
	}
	return series, nil
}

func readRows(f *os.File) ([]SampleRow, error) {
	reader := parquet.NewGenericReader[SampleRow](f)
	defer reader.Close()

	rows := make([]SampleRow, reader.NumRows())
	total := 0
	for total < len(rows) {
		n, err := reader.Read(rows[total:])
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows[:total], nil
}

// GetTime returns the archive's timestamp axis.
func (s *Store) GetTime(path string) ([]int64, error) {
	series, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	return series.Times(), nil
}

// Chop re-emits samples [start, end] of src as a new archive at dst. The
// source archive is never modified. isReference marks the atmospheric
// reference channel so readers can tell the variable roles apart.
func (s *Store) Chop(src, dst string, start, end int, isReference bool) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return fmt.Errorf("refusing to chop %s onto itself", src)
	}

	series, err := s.Read(src)
	if err != nil {
		return err
	}
	if start < 0 || end < start || end >= series.Len() {
		return fmt.Errorf("index range [%d, %d] outside archive of %d samples", start, end, series.Len())
	}

	chopped := series.Slice(start, end)
	chopped.Meta.Reference = isReference
	chopped.Meta.Variable = types.VariableName(isReference)
	return s.Write(dst, chopped)
}
