package override

// Status classifies the outcome of an override prediction attempt.
// The fallback to the weighted ensemble is an explicit branch on this
// value, not exception-driven control flow.
type Status int

const (
	// StatusOK means the trained model produced a usable probability.
	StatusOK Status = iota
	// StatusUnavailable means no artifact is configured or present.
	// This is a normal deployment state, not a fault.
	StatusUnavailable
	// StatusFailed means an artifact exists but loading or prediction
	// failed; the error is logged once and memoized.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Prediction is the explicit result of asking the override model for a
// probability. Probability is meaningful only when Status is StatusOK.
type Prediction struct {
	Probability float64
	Status      Status
	Err         error
}

func ok(prob float64) Prediction {
	return Prediction{Probability: prob, Status: StatusOK}
}

func unavailable() Prediction {
	return Prediction{Status: StatusUnavailable}
}

func failed(err error) Prediction {
	return Prediction{Status: StatusFailed, Err: err}
}
