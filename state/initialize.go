package state

import (
	_ "embed"
	"fmt"
	"os"
	"time"
)

//go:embed default.css
var defaultStylesheet []byte

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:        time.Now(),
		DefaultStyle: defaultStylesheet,
	}
}

func readStylesheet(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read style css from %q: %w", path, err)
	}
	return data, nil
}
