// Package analysis post-processes simulation runs.
//
// The package includes tools for characterizing recorded and live runs:
//
//   - [PowerSpectrum]: magnitude spectrum of one trajectory component
//   - [DominantFrequency]: strongest non-zero frequency in a trajectory
//   - [LyapunovExponent]: sensitivity of a scene to a small nudge
//   - [BifurcationDiagram]: parameter sweep over a config value
//   - [PhasePortrait]: 2D trajectory of one body in component space
//   - [PoincareSectionOf]: points where one component crosses a threshold
//
// # Sensitivity
//
// Piles of colliding bodies are often chaotic. A positive exponent means
// a tiny displacement of one body grows over the run:
//
//	lambda, err := analysis.LyapunovExponent(cfg, 1e-6, 5)
//	if err == nil && lambda > 0 {
//	    // outcome depends sharply on initial placement
//	}
package analysis
