package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	bodiesFile   = "bodies.csv"
)

var ErrCorruptRun = errors.New("storage: corrupt run")

var bodiesHeader = []string{"step", "time", "id", "label", "kind", "x", "y", "theta", "vx", "vy", "omega"}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Frames      int                `json:"frames"`
	Bodies      int                `json:"bodies"`
	Fingerprint string             `json:"fingerprint"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config,omitempty"`
}

// runID is the scene, a unix timestamp and a short hash of the moment and
// final state, so runs saved within one second stay distinct.
func (s *Store) runID(scene string, fingerprint uint64) string {
	now := s.now()
	h := xxhash.Sum64String(fmt.Sprintf("%d/%x", now.UnixNano(), fingerprint))
	if scene == "" {
		scene = "run"
	}
	return fmt.Sprintf("%s_%d_%08x", scene, now.Unix(), uint32(h))
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := s.runID(cfg.Scene, result.Fingerprint)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	bodies := 0
	if len(result.Frames) > 0 {
		bodies = len(result.Frames[0].Bodies)
	}
	meta := RunMetadata{
		ID:          runID,
		Scene:       cfg.Scene,
		Timestamp:   s.now(),
		Seed:        cfg.Run.Seed,
		Dt:          cfg.Run.Dt,
		Duration:    cfg.Run.Duration,
		Steps:       result.StepsTaken,
		Frames:      len(result.Frames),
		Bodies:      bodies,
		Fingerprint: fmt.Sprintf("%016x", result.Fingerprint),
		Metrics:     result.Metrics,
		Config:      cfg,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeBodies(filepath.Join(runDir, bodiesFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeBodies(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, result)
}

// WriteCSV writes one row per body per frame in the bodies.csv layout.
func WriteCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)
	if err := w.Write(bodiesHeader); err != nil {
		return err
	}

	num := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, frame := range result.Frames {
		for _, b := range frame.Bodies {
			row := []string{
				strconv.Itoa(frame.Step),
				num(frame.Time),
				string(b.ID),
				b.Label,
				b.Kind.String(),
				num(b.X), num(b.Y), num(b.Theta),
				num(b.VX), num(b.VY), num(b.Omega),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}

	return &meta, nil
}

// LoadTrajectory rebuilds the recorded frames of a run. Metrics and the
// fingerprint come from the metadata.
func (s *Store) LoadTrajectory(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, bodiesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(bodiesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}

	result := &sim.Result{Metrics: meta.Metrics, StepsTaken: meta.Steps}
	if fp, err := strconv.ParseUint(meta.Fingerprint, 16, 64); err == nil {
		result.Fingerprint = fp
	}

	for i, record := range records {
		if i == 0 {
			continue
		}
		step, sample, t, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrCorruptRun, runID, i+1, err)
		}
		n := len(result.Frames)
		if n == 0 || result.Frames[n-1].Step != step {
			result.Frames = append(result.Frames, sim.Frame{Step: step, Time: t})
			n++
		}
		result.Frames[n-1].Bodies = append(result.Frames[n-1].Bodies, sample)
	}

	return result, nil
}

func parseRow(record []string) (int, sim.Sample, float64, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return 0, sim.Sample{}, 0, err
	}
	kind, err := body.ParseKind(record[4])
	if err != nil {
		return 0, sim.Sample{}, 0, err
	}

	var vals [7]float64
	for i, field := range []int{1, 5, 6, 7, 8, 9, 10} {
		if vals[i], err = strconv.ParseFloat(record[field], 64); err != nil {
			return 0, sim.Sample{}, 0, err
		}
	}

	return step, sim.Sample{
		ID:    body.ID(record[2]),
		Label: record[3],
		Kind:  kind,
		X:     vals[1],
		Y:     vals[2],
		Theta: vals[3],
		VX:    vals[4],
		VY:    vals[5],
		Omega: vals[6],
	}, vals[0], nil
}
