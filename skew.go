// skew.go implements a small clock-drift estimator that drives a
// Resampler's scaling over time, the concrete home for the "skew
// controller" collaborator named in spec.md §6.

package resampler

import "github.com/thesyncim/resampler/util"

// deadband is the smallest drift magnitude the controller reacts to;
// anything smaller is treated as clock jitter rather than real skew.
const deadband = 1e-4

// SkewController observes pairs of (local, remote) timestamps as frames
// arrive and periodically proposes a new scaling to a Resampler via
// SetScaling, keeping the two clocks aligned. It is a PI controller over
// the drift ratio: proportional on the latest sample, integral on the
// accumulated error, smoothed so a single noisy observation cannot yank
// scaling around.
type SkewController struct {
	r *Resampler

	kp, ki float32
	min    float32
	max    float32

	integral float32
	have     bool
	lastLoc  float32
	lastRem  float32
}

// SkewControllerOption configures a SkewController at construction time.
type SkewControllerOption func(*SkewController)

// WithGains overrides the default proportional/integral gains.
func WithGains(kp, ki float32) SkewControllerOption {
	return func(s *SkewController) { s.kp, s.ki = kp, ki }
}

// WithScalingBounds clamps the scaling values the controller will ever
// propose, independent of what the Resampler itself would accept.
func WithScalingBounds(min, max float32) SkewControllerOption {
	return func(s *SkewController) { s.min, s.max = min, max }
}

// NewSkewController creates a controller that adjusts r's scaling. r must
// already be valid.
func NewSkewController(r *Resampler, opts ...SkewControllerOption) *SkewController {
	s := &SkewController{
		r:   r,
		kp:  0.35,
		ki:  0.05,
		min: 0.5,
		max: 2.0,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe records a new (local, remote) timestamp pair, expressed in the
// same units (e.g. samples or milliseconds since stream start), and
// applies the resulting scaling correction to the controlled Resampler.
// It returns the scaling value it proposed and whether the Resampler
// accepted it.
func (s *SkewController) Observe(localTime, remoteTime float32) (float32, bool) {
	if !s.have {
		s.lastLoc, s.lastRem = localTime, remoteTime
		s.have = true
		return s.r.Scaling(), true
	}

	localDelta := localTime - s.lastLoc
	remoteDelta := remoteTime - s.lastRem
	s.lastLoc, s.lastRem = localTime, remoteTime

	if localDelta <= 0 {
		return s.r.Scaling(), true
	}

	// drift > 1 means the remote clock is running fast relative to
	// local: we must consume remote samples faster, i.e. decimate more.
	drift := remoteDelta / localDelta
	errTerm := drift - 1.0
	if util.Abs(errTerm) < deadband {
		// Within jitter: hold the last proposed scaling and integral
		// rather than chasing noise below the controller's resolution.
		return s.r.Scaling(), true
	}
	s.integral += errTerm

	proposed := 1.0 + s.kp*errTerm + s.ki*s.integral
	proposed = s.clamp(proposed)

	ok := s.r.SetScaling(proposed)
	if !ok {
		// Rejected: undo the integral contribution so a single spike
		// near the Resampler's window-fit limit doesn't wind up.
		s.integral -= errTerm
		return s.r.Scaling(), false
	}
	return proposed, true
}

// Reset clears the controller's accumulated state without touching the
// Resampler's current scaling.
func (s *SkewController) Reset() {
	s.integral = 0
	s.have = false
}

func (s *SkewController) clamp(v float32) float32 {
	if v < s.min {
		return s.min
	}
	if v > s.max {
		return s.max
	}
	return v
}
