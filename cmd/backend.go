package cmd

import (
	"fmt"

	"github.com/kozaktomas/face-sieve/internal/config"
	"github.com/kozaktomas/face-sieve/internal/extractor"
)

// newExtractor builds the selected extractor backend. The returned cleanup
// function releases backend resources and is never nil.
func newExtractor(cfg *config.Config, name, device string) (extractor.Extractor, func(), error) {
	if device == "" {
		device = cfg.Extractor.Device
	}

	switch name {
	case "remote":
		return extractor.NewRemoteExtractor(cfg.Extractor.URL, device), func() {}, nil
	case "dlib":
		ext, err := extractor.NewDlibExtractor(cfg.Extractor.ModelsDir)
		if err != nil {
			return nil, nil, err
		}
		return ext, ext.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown extractor: %s (supported: remote, dlib)", name)
	}
}

// defaultModel maps an extractor backend to its model preset name.
func defaultModel(extractorName string) string {
	if extractorName == "dlib" {
		return "dlib-resnet-v1"
	}
	return "buffalo_l"
}
