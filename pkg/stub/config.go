package stub

import (
	"fmt"
	"time"
)

// Mode selects the response shape the stub backend produces.
type Mode string

const (
	// ModeJSON answers with a buffered {"result": ...} body.
	ModeJSON Mode = "json"

	// ModeSSE streams "data: " frames terminated by "data: [DONE]".
	ModeSSE Mode = "sse"

	// ModeText streams plain newline-terminated lines.
	ModeText Mode = "text"

	// ModeError fails every request with a 500 and a detail.
	ModeError Mode = "error"
)

// Modes lists every supported Mode.
var Modes = []Mode{ModeJSON, ModeSSE, ModeText, ModeError}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown stub mode %q (available: %v)", s, Modes)
}

// Config is the stub backend configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// Mode is the response shape for POST /llm.
	Mode Mode

	// Delay is slept between streamed chunks.
	Delay time.Duration
}
