package genericsearch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the --command-file shape: the crawl range, its
// partitioning, and where to send page requests. It deliberately
// excludes RateLimitStopPercent, which is a CLI flag shared with the
// rest of the run, not a command-specific setting.
type FileConfig struct {
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	PartCount int    `yaml:"partCount"`
	Endpoint  string `yaml:"endpoint"`
}

// LoadFileConfig reads and parses a --command-file document.
func LoadFileConfig(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("genericsearch: reading command file %q: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("genericsearch: parsing command file %q: %w", path, err)
	}
	if fc.Start == "" || fc.End == "" {
		return FileConfig{}, fmt.Errorf("genericsearch: command file %q missing start/end", path)
	}
	if fc.PartCount == 0 {
		fc.PartCount = 1
	}
	return fc, nil
}
