package generation

// Addressing selects how a request names its adapter.
type Addressing int

const (
	// AddressByBrand resolves a strategy by brand name; the model is the
	// explicit checkpoint, else the brand's bound checkpoint, else the base.
	AddressByBrand Addressing = iota
	// AddressByCheckpoint names a supported adapter id plus a checkpoint
	// reference; prompts pass through unchanged.
	AddressByCheckpoint
)

func (a Addressing) String() string {
	if a == AddressByCheckpoint {
		return "checkpoint"
	}
	return "brand"
}

// Request is one generation request.
type Request struct {
	Prompt     string
	Mode       Addressing
	AdapterID  string
	Brand      string
	Checkpoint string
	Params     SamplingParams
}

// ByCheckpoint addresses adapterID loaded from checkpoint.
func ByCheckpoint(prompt, adapterID, checkpoint string) Request {
	return Request{Prompt: prompt, Mode: AddressByCheckpoint, AdapterID: adapterID, Checkpoint: checkpoint}
}

// ByBrand addresses the strategy named brand.
func ByBrand(prompt, brand string) Request {
	return Request{Prompt: prompt, Mode: AddressByBrand, Brand: brand}
}

// WithCheckpoint overrides the checkpoint bound to the request's brand.
func (r Request) WithCheckpoint(ref string) Request {
	r.Checkpoint = ref
	return r
}

// WithParams sets sampling parameters; zero fields keep mode defaults.
func (r Request) WithParams(p SamplingParams) Request {
	r.Params = p
	return r
}

// Sampling defaults per addressing mode.
var (
	defaultBrandParams = SamplingParams{
		MaxTokens:   256,
		Temperature: 0.7,
		Stop:        []string{"</s>", "###"},
	}
	defaultCheckpointParams = SamplingParams{
		MaxTokens: 512,
	}
)

// DefaultParams returns the sampling defaults for mode.
func DefaultParams(mode Addressing) SamplingParams {
	d := defaultBrandParams
	if mode == AddressByCheckpoint {
		d = defaultCheckpointParams
	}
	d.Stop = append([]string(nil), d.Stop...)
	return d
}

func withDefaults(p SamplingParams, mode Addressing) SamplingParams {
	d := DefaultParams(mode)
	if p.MaxTokens <= 0 {
		p.MaxTokens = d.MaxTokens
	}
	if p.Temperature <= 0 {
		p.Temperature = d.Temperature
	}
	if p.Stop == nil {
		p.Stop = d.Stop
	}
	return p
}
