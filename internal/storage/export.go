package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/sim"
)

type ExportData struct {
	Scene       string             `json:"scene"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Fingerprint uint64             `json:"fingerprint"`
	Frames      []ExportFrame      `json:"frames"`
	Metrics     map[string]float64 `json:"metrics"`
}

type ExportFrame struct {
	Step   int            `json:"step"`
	Time   float64        `json:"time"`
	Bodies []ExportSample `json:"bodies"`
}

type ExportSample struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"`
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Omega float64 `json:"omega"`
}

func newExportData(cfg *config.Config, result *sim.Result) ExportData {
	data := ExportData{
		Scene:       cfg.Scene,
		Seed:        cfg.Run.Seed,
		Dt:          cfg.Run.Dt,
		Duration:    cfg.Run.Duration,
		Steps:       result.StepsTaken,
		Fingerprint: result.Fingerprint,
		Frames:      make([]ExportFrame, len(result.Frames)),
		Metrics:     result.Metrics,
	}

	for i, f := range result.Frames {
		ef := ExportFrame{Step: f.Step, Time: f.Time, Bodies: make([]ExportSample, len(f.Bodies))}
		for j, b := range f.Bodies {
			ef.Bodies[j] = ExportSample{
				ID: string(b.ID), Label: b.Label, Kind: b.Kind.String(),
				X: b.X, Y: b.Y, Theta: b.Theta,
				VX: b.VX, VY: b.VY, Omega: b.Omega,
			}
		}
		data.Frames[i] = ef
	}
	return data
}

func ExportJSON(path string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSONTo(file, cfg, result)
}

func ExportJSONTo(w io.Writer, cfg *config.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(cfg, result))
}
