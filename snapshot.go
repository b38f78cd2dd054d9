package gridfsm

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalConfig serializes the configuration snapshot as YAML. Restoring
// the result into a machine of the same dimensions reproduces identical
// matrices and per-state descriptors.
func (f *FSM[T]) MarshalConfig() ([]byte, error) {
	return yaml.Marshal(f.Snapshot())
}

// UnmarshalConfig replaces the configuration with a YAML snapshot
// produced by MarshalConfig.
func (f *FSM[T]) UnmarshalConfig(data []byte) error {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode config snapshot: %w", err)
	}
	return f.Restore(&s)
}
