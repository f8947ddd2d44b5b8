package pipeline

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed metadata.yaml
var metadataYAML []byte

type metricInfo struct {
	FullName    string `yaml:"full_name"`
	Format      string `yaml:"format"`
	Description string `yaml:"description"`
}

type displayMetadata struct {
	Metrics         map[string]metricInfo `yaml:"metrics"`
	Countries       map[string]string     `yaml:"countries"`
	TechPatterns    map[string][]string   `yaml:"tech_patterns"`
	TechInsights    map[string]string     `yaml:"tech_insights"`
	CountryInsights map[string]string     `yaml:"country_insights"`
}

var meta = mustLoadMetadata()

func mustLoadMetadata() displayMetadata {
	var m displayMetadata
	if err := yaml.Unmarshal(metadataYAML, &m); err != nil {
		panic(fmt.Sprintf("pipeline: embedded metadata is malformed: %v", err))
	}
	return m
}
