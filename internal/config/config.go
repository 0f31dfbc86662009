// Package config turns a PluginSpec's opaque configuration map into a
// strongly typed, validated plugin-specific config struct.
//
// It plays the role the original C++ implementation's
// Envoy::MessageUtil::unpackTo plus proto field validation played for
// google.protobuf.Any-typed plugin configs: one call both "unpacks" the
// opaque blob and validates it, surfacing any problem as a single error
// instead of a panic, matching the requirement in spec §4.1 that "any
// unpacking failure MUST be surfaced as InvalidArgument, never a panic."
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Decode re-marshals raw (a PluginSpec's opaque config map) to YAML and
// unmarshals it into out, then runs struct validation tags against out.
// out must be a pointer to a struct. A nil/empty raw map is valid input —
// it decodes to out's zero value, which validation may still reject if the
// plugin's config requires fields.
func Decode(raw map[string]interface{}, out interface{}) error {
	if len(raw) > 0 {
		data, err := yaml.Marshal(raw)
		if err != nil {
			return fmt.Errorf("could not re-encode plugin config: %w", err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid plugin config: %w", err)
		}
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("plugin config validation failed: %w", err)
	}
	return nil
}
