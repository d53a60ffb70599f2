package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/bench-runner/internal/model"
)

// testFile is the on-disk layout of a test list.
type testFile struct {
	Tests []model.TestSpec `yaml:"tests"`
}

// LoadTests reads and validates a YAML test list:
//
//	tests:
//	  - framework: OpenVINO DLDT
//	    model: {name: resnet-50, path: /models/resnet-50.xml}
//	    parameters: {device: CPU, batch_size: 1, iterations: 100}
func LoadTests(path string) ([]model.TestSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test list %s: %w", path, err)
	}

	var f testFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse test list %s: %w", path, err)
	}
	if err := NormalizeTests(f.Tests); err != nil {
		return nil, fmt.Errorf("invalid test list %s: %w", path, err)
	}
	return f.Tests, nil
}

// NormalizeTests fills defaults in place and reports every invalid entry.
func NormalizeTests(tests []model.TestSpec) error {
	var errs []error
	for i := range tests {
		t := &tests[i]
		if t.Framework == "" {
			errs = append(errs, fmt.Errorf("test %d: framework is required", i+1))
		}
		if t.Parameters.BatchSize == 0 {
			t.Parameters.BatchSize = 1
		}
		if t.Parameters.Iterations == 0 {
			t.Parameters.Iterations = 1
		}
		if t.Parameters.Device == "" {
			t.Parameters.Device = "CPU"
		}
		if t.Parameters.BatchSize < 0 || t.Parameters.Iterations < 0 {
			errs = append(errs, fmt.Errorf("test %d: batch size and iterations must be positive", i+1))
		}
		if t.Timeout < 0 {
			errs = append(errs, fmt.Errorf("test %d: timeout cannot be negative", i+1))
		}
	}
	return errors.Join(errs...)
}
