// CUE schema validation code
package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

//go:embed bench.cue
var embeddedSchema []byte

// ValidateWithCue validates YAML config bytes against the #Bench definition of a CUE schema.
func ValidateWithCue(filename string, configYAML, cueSchema []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(cueSchema, cue.Filename("bench.cue"))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Bench"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no #Bench definition")
	}

	file, err := yaml.Extract(filename, configYAML)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if err := configVal.Err(); err != nil {
		return fmt.Errorf("cannot build YAML config: %w", err)
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
