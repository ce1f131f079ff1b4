package main

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/scriptrt/heapgc/gc"
)

// fileConfig mirrors gc.Config field-for-field but with every field optional,
// so a config file only needs to name the knobs it wants to override.
type fileConfig struct {
	MarkStepLimit      *int   `yaml:"markStepLimit"`
	SweepStepLimit     *int   `yaml:"sweepStepLimit"`
	InitialThreshold   *int64 `yaml:"initialThreshold"`
	StackBlockCapacity *int   `yaml:"stackBlockCapacity"`
	Stress             *bool  `yaml:"stress"`
}

// loadConfig starts from gc.DefaultConfig and overlays whatever path
// specifies. An empty path returns the default unmodified.
func loadConfig(path string) (gc.Config, error) {
	cfg := gc.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, err
	}

	if fc.MarkStepLimit != nil {
		cfg.MarkStepLimit = *fc.MarkStepLimit
	}
	if fc.SweepStepLimit != nil {
		cfg.SweepStepLimit = *fc.SweepStepLimit
	}
	if fc.InitialThreshold != nil {
		cfg.InitialThreshold = uintptr(*fc.InitialThreshold)
	}
	if fc.StackBlockCapacity != nil {
		cfg.StackBlockCapacity = *fc.StackBlockCapacity
	}
	if fc.Stress != nil {
		cfg.Stress = *fc.Stress
	}
	return cfg, nil
}
