package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ALH477/DeMoD-Vox/dsp/param"
)

type setting struct {
	name  string
	value float64
}

// settingList collects repeated -set name=value flags.
type settingList []setting

func (s *settingList) String() string {
	parts := make([]string, len(*s))
	for i, a := range *s {
		parts[i] = fmt.Sprintf("%s=%g", a.name, a.value)
	}

	return strings.Join(parts, ",")
}

func (s *settingList) Set(arg string) error {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("expected name=value: %q", arg)
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if _, err := param.Lookup(name); err != nil {
		return err
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", name, err)
	}

	*s = append(*s, setting{name: name, value: v})

	return nil
}

// apply writes the settings in order; later assignments win.
func (s settingList) apply(store *param.Store) error {
	for _, a := range s {
		if err := store.SetByName(a.name, a.value); err != nil {
			return err
		}
	}

	return nil
}
