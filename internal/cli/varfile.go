package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// collectVariables merges variable bindings from files and flags.
// Files apply in argument order with later files winning; --var flags
// apply last and beat every file.
func collectVariables(files []string, flags []string) (map[string]interface{}, error) {
	vars := make(map[string]interface{})

	for _, path := range files {
		loaded, err := loadVarFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range loaded {
			vars[k] = v
		}
	}

	for _, flag := range flags {
		key, value, err := parseVarFlag(flag)
		if err != nil {
			return nil, err
		}
		vars[key] = value
	}

	return vars, nil
}

// parseVarFlag splits one --var argument into key and value.
// Values stay strings; the generator coerces them against the declared
// variable type.
func parseVarFlag(s string) (string, string, error) {
	key, value, found := strings.Cut(s, "=")
	if !found || key == "" {
		return "", "", errors.Newf(errors.ErrInvalidInput,
			"invalid --var %q, expected key=value", s)
	}
	return key, value, nil
}

// loadVarFile reads bindings from one file, dispatching on extension.
func loadVarFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "variable file %s not found", path)
		}
		return nil, errors.Wrapf(err, errors.ErrExecutionFailure, "cannot read variable file %s", path)
	}

	vars := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &vars)
	case ".toml":
		err = toml.Unmarshal(data, &vars)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &vars)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput,
			"unsupported variable file type %q, use .json, .toml or .yaml", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"failed to parse variable file %s", path)
	}

	return vars, nil
}
