package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromExitCode(t *testing.T) {
	assert.Equal(t, Success, StatusFromExitCode(0))
	assert.Equal(t, Failure, StatusFromExitCode(1))
	assert.Equal(t, Failure, StatusFromExitCode(137))
	assert.Equal(t, Failure, StatusFromExitCode(-1))
}

func TestExecutionStatusString(t *testing.T) {
	assert.Equal(t, "Success", Success.String())
	assert.Equal(t, "Failure", Failure.String())
}

func TestTestSpecString(t *testing.T) {
	spec := TestSpec{
		Framework:  "PyTorch",
		Model:      ModelInfo{Name: "resnet-50"},
		Parameters: Parameters{Device: "CPU", BatchSize: 8},
	}
	assert.Equal(t, "PyTorch/resnet-50/CPU/b8", spec.String())
}

func TestMetricsEmpty(t *testing.T) {
	assert.True(t, Metrics{}.Empty())
	assert.False(t, Metrics{FPS: 1}.Empty())
}
