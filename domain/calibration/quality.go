package calibration

import (
	"math"

	"github.com/goki/mat32"
	"gonum.org/v1/gonum/stat"
)

// WaypointQuality summarizes how tightly validation samples clustered
// around one waypoint: mean and standard deviation of the per-sample gaze
// error, taken over the midpoint of the two eye estimates.
type WaypointQuality struct {
	Name      string  `json:"name"`
	Samples   int     `json:"samples"`
	MeanError float64 `json:"mean_error"`
	StdError  float64 `json:"std_error"`
}

// Quality computes per-waypoint validation quality. Waypoints with no
// samples report NaN errors rather than being dropped, so the report stays
// parallel to the path.
func (m *Machine) Quality() []WaypointQuality {
	out := make([]WaypointQuality, len(m.path))
	for i, wp := range m.path {
		samples := m.validationSamples[i]
		q := WaypointQuality{Name: wp.Name, Samples: len(samples)}
		if len(samples) == 0 {
			q.MeanError = math.NaN()
			q.StdError = math.NaN()
			out[i] = q
			continue
		}
		errs := make([]float64, len(samples))
		for j, s := range samples {
			mid := s.Left.Add(s.Right).MulScalar(0.5)
			errs[j] = float64(planarDistance(mid, wp.Position))
		}
		q.MeanError, q.StdError = stat.MeanStdDev(errs, nil)
		if len(errs) == 1 {
			q.StdError = 0
		}
		out[i] = q
	}
	return out
}

func planarDistance(a, b mat32.Vec3) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return mat32.Sqrt(dx*dx + dy*dy)
}
