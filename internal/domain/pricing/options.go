package pricing

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the default factor weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.Seasonality > 0 && w.DayOfWeek > 0 && w.Occupancy > 0 && w.SpecialEvents > 0 {
			e.weights = w
		}
	}
}
