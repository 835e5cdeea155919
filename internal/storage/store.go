// Package storage persists recorded runs as a directory per run holding
// metadata.json and frames.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sphsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var framesHeader = []string{"tick", "time", "particle", "x", "y", "z", "r", "g", "b", "density"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Particles   int                `json:"particles"`
	Kernel      string             `json:"kernel"`
	Accelerator string             `json:"accelerator"`
	Forces      string             `json:"forces"`
	H           float64            `json:"h"`
	Dt          float64            `json:"dt"`
	Seed        uint64             `json:"seed"`
	Ticks       uint64             `json:"ticks"`
	Frames      int                `json:"frames"`
	Reason      string             `json:"reason"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a new run and returns its id.
func (s *Store) Save(meta RunMetadata, frames []dynamo.Snapshot) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Kernel, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Frames = len(frames)

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(framesHeader); err != nil {
		return "", err
	}

	row := make([]string, len(framesHeader))
	for _, snap := range frames {
		for i, r := range snap.Records {
			row[0] = strconv.FormatUint(snap.Tick, 10)
			row[1] = formatFloat(snap.Time)
			row[2] = strconv.Itoa(i)
			row[3] = formatFloat(r.Position[0])
			row[4] = formatFloat(r.Position[1])
			row[5] = formatFloat(r.Position[2])
			row[6] = formatFloat(r.Color[0])
			row[7] = formatFloat(r.Color[1])
			row[8] = formatFloat(r.Color[2])
			row[9] = formatFloat(r.Density)
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads the snapshots of a run back in tick order.
func (s *Store) LoadFrames(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(framesHeader)

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []dynamo.Snapshot{}, nil
		}
		return nil, err
	}

	frames := make([]dynamo.Snapshot, 0)
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		tick, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, line, err)
		}
		vals := make([]float64, 0, 8)
		for _, col := range append(record[1:2:2], record[3:]...) {
			v, err := strconv.ParseFloat(col, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, line, err)
			}
			vals = append(vals, v)
		}

		if len(frames) == 0 || frames[len(frames)-1].Tick != tick {
			frames = append(frames, dynamo.Snapshot{Tick: tick, Time: vals[0]})
		}
		last := &frames[len(frames)-1]
		last.Records = append(last.Records, dynamo.Record{
			Position: dynamo.Vec3{vals[1], vals[2], vals[3]},
			Color:    dynamo.Vec3{vals[4], vals[5], vals[6]},
			Density:  vals[7],
		})
	}

	return frames, nil
}

// ExportData is the single-document JSON form of a run.
type ExportData struct {
	RunMetadata
	Snapshots []dynamo.Snapshot `json:"snapshots"`
}

// ExportJSON writes metadata and every frame of a run as one JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: *meta, Snapshots: frames})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
