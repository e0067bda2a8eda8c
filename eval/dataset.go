package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Record is one input with its expected output.
type Record struct {
	Input    string `yaml:"input_data" json:"input_data"`
	Expected string `yaml:"expected_output" json:"expected_output"`
}

// Dataset is a named list of records.
type Dataset struct {
	Name        string   `yaml:"dataset_name" json:"dataset_name"`
	Description string   `yaml:"description" json:"description"`
	Records     []Record `yaml:"records" json:"records"`
}

// LoadDataset reads a dataset from a YAML file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("dataset %s: %w", path, ErrEmptyDataset)
	}
	return &ds, nil
}

// CapitalsDataset tests knowledge of capital cities.
func CapitalsDataset() Dataset {
	return Dataset{
		Name:        "demo_capitals",
		Description: "A dataset for testing knowledge of capital cities",
		Records: []Record{
			{Input: "What is the capital of France?", Expected: "Paris"},
			{Input: "What is the capital of Switzerland?", Expected: "Bern"},
		},
	}
}
