package output

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlReport struct {
	Days []ReportRow `yaml:"days"`
}

func writeReportYAML(path string, rows []ReportRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create yaml output %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(yamlReport{Days: rows}); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("flush yaml output: %w", err)
	}
	return nil
}
