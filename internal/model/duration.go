package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that marshals to/from YAML as either a
// Go duration string ("10s", "2m30s") or a plain integer number of
// nanoseconds, matching how the teacher's other duration-bearing config
// records read naturally in a config file.
type Duration time.Duration

// AsDuration returns the standard library representation.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var asString string
	if value.ShortTag() != "!!int" && value.Decode(&asString) == nil && asString != "" {
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", asString, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var asNanos int64
	if err := value.Decode(&asNanos); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\" or an integer number of nanoseconds: %w", err)
	}
	*d = Duration(asNanos)
	return nil
}

// MarshalJSON encodes the duration as a plain integer number of
// nanoseconds, the convention the dispatch client's wire messages use.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(d))
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var nanos int64
	if err := json.Unmarshal(data, &nanos); err != nil {
		return fmt.Errorf("duration must be an integer number of nanoseconds: %w", err)
	}
	*d = Duration(nanos)
	return nil
}
