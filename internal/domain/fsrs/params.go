package fsrs

// Default weight vector for the scheduling formulas. The indices follow the
// FSRS-4.5 convention used by the reference schedulers:
//
//	w[0..3]  initial stability for ratings Again/Hard/Good/Easy on first review
//	w[4]     difficulty mean-reversion target
//	w[5]     difficulty update step per rating point
//	w[6]     stability decay exponent after a lapse
//	w[7]     stability base after a lapse
//	w[8]     stability growth base (success)
//	w[9]     retrievability-stability interaction
//	w[10]    stability-stability interaction (power)
//	w[11]    hard growth penalty
//	w[12]    easy growth bonus
//
// These values are pinned: every scheduling decision and every test in this
// package depends on them. Changing them changes learners' schedules.
var defaultWeights = []float64{
	0.4, 0.6, 2.4, 5.8, // w0..w3
	4.93, 0.94, // w4, w5
	0.86, 0.01, // w6, w7
	1.49, 0.14, 0.94, // w8..w10
	2.18, 0.05, // w11, w12 (reserved for optimizer output, unused here)
}

// Clamp bounds and scheduling constants. Stability and difficulty are
// clamped after every update so the memory state never becomes negative,
// zero, or non-finite.
const (
	// MinStability is the stability floor in days (~2.4 hours).
	MinStability = 0.1

	// MinDifficulty and MaxDifficulty bound the difficulty scale.
	MinDifficulty = 1.0
	MaxDifficulty = 10.0

	// DefaultDifficulty is the midpoint difficulty assigned to cards
	// created from a familiarity hint, before their first graded review.
	DefaultDifficulty = 5.0

	// DefaultTargetRetention is the recall probability the scheduler aims
	// for at review time.
	DefaultTargetRetention = 0.9

	// minIntervalDays is the shortest successful-review interval.
	minIntervalDays = 1.0

	// meanReversionWeight is how much of the per-review difficulty update
	// survives reversion toward w[4]. 0.7 keeps 70% of the update.
	meanReversionWeight = 0.7

	// graduationReps is the successful-review count at which a Learning
	// card graduates to Review.
	graduationReps = 2
)

// Initial stability in days for familiarity hints attached by ingestion.
// Unknown content starts at the stability floor and is due immediately.
const (
	knownHintStability = 7.0
	seenHintStability  = 2.0
)

// Params defines all configurable parameters for the FSRS scheduler.
type Params struct {
	// Weights is the 13-element weight vector. See defaultWeights.
	Weights []float64

	// TargetRetention is the recall probability intervals are solved for.
	TargetRetention float64

	// Interval modifiers applied after a successful review.
	HardIntervalFactor float64
	EasyIntervalFactor float64

	// Growth factors scale the stability gain per rating so the gain grows
	// with rating as well as with how surprising the recall was.
	HardGrowthFactor float64
	GoodGrowthFactor float64
	EasyGrowthFactor float64

	// RelearningMinutes schedules the next sight of a Review card that
	// lapsed; LearningAgainMinutes does the same for Learning cards, which
	// come back within the session.
	RelearningMinutes    int
	LearningAgainMinutes int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the defaults.
type ParamsConfig struct {
	Weights         []float64
	TargetRetention float64
}

// NewDefaultParams creates a new Params instance with the pinned defaults.
func NewDefaultParams() *Params {
	return &Params{
		Weights:         defaultWeights,
		TargetRetention: DefaultTargetRetention,

		HardIntervalFactor: 0.8,
		EasyIntervalFactor: 1.3,

		HardGrowthFactor: 0.8,
		GoodGrowthFactor: 1.0,
		EasyGrowthFactor: 1.3,

		RelearningMinutes:    10,
		LearningAgainMinutes: 1,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.Weights) == len(defaultWeights) {
		params.Weights = config.Weights
	}

	if config.TargetRetention > 0 && config.TargetRetention < 1 {
		params.TargetRetention = config.TargetRetention
	}

	return params
}
