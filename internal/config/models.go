package config

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

// ModelsConfig lists the known extractor models with their presets.
type ModelsConfig struct {
	Models map[string]ModelPreset `yaml:"models"`
}

// ModelPreset describes an extractor model: embedding dimension, the default
// matching tolerance, and the distance metric its tolerances are calibrated
// for. Tolerances are only meaningful relative to the model that produced
// the embeddings.
type ModelPreset struct {
	Dim       int     `yaml:"dim"`
	Tolerance float64 `yaml:"tolerance"`
	Metric    string  `yaml:"metric"`
}

func loadModelPresets() ModelsConfig {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}
	return models
}

// GetModelPreset returns the preset for a model name, falling back to the
// dlib preset when the name is unknown.
func (c *Config) GetModelPreset(name string) ModelPreset {
	if preset, ok := c.Models.Models[name]; ok {
		return preset
	}
	return ModelPreset{Dim: 128, Tolerance: 0.6, Metric: "euclidean"}
}
