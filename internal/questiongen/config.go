package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated batch; the first failure
	// stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for one response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// MaxAvoid caps how many already-seen scenarios go into the prompt.
	MaxAvoid int

	// Attempts is how many times a batch that failed a retryable
	// validation is requested again. Every attempt is paid for.
	Attempts int
}

// DefaultConfig returns the standard validator chain and recommended
// defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DedupValidator{},
		},
		MaxTokens:   8000,
		Temperature: 0.8,
		MaxAvoid:    5,
		Attempts:    2,
	}
}
