package config

const (
	defaultEndpoint = "http://localhost:8000/llm"

	defaultStubListen = ":8000"
	defaultStubMode   = "sse"
	defaultStubDelay  = "50ms"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Endpoint: defaultEndpoint,
		},
		Stub: StubConfig{
			Listen: defaultStubListen,
			Mode:   defaultStubMode,
			Delay:  defaultStubDelay,
		},
	}
}
