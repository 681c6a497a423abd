// Package config holds the core's feature-flag configuration: which
// attribution passes are enabled. Defaults come from environment
// variables via caarlos0/env, and the CLI layer overrides them from the
// `-e`/`-d` flags documented in spec.md §6.
package config

import "github.com/caarlos0/env/v6"

// Features toggles the optional compiler passes. ConstFolding is the
// only feature spec.md names (§4.3, §6); the struct is kept separate
// from any future CLI-only state so env.Parse has a clean target.
type Features struct {
	ConstFolding bool `env:"YUK_CONST_FOLDING" envDefault:"true"`
}

// Load reads Features from the environment, applying the package
// defaults for anything unset.
func Load() (Features, error) {
	var f Features
	if err := env.Parse(&f); err != nil {
		return Features{}, err
	}
	return f, nil
}

// Apply turns a comma-separated enable list and disable list (as parsed
// from `-e`/`-d` flags) into a final Features value, with disables
// applied after enables so `-e const-folding -d const-folding` disables.
func (f Features) Apply(enable, disable []string) Features {
	for _, name := range enable {
		f.set(name, true)
	}
	for _, name := range disable {
		f.set(name, false)
	}
	return f
}

func (f *Features) set(name string, on bool) {
	switch name {
	case "const-folding":
		f.ConstFolding = on
	}
}
