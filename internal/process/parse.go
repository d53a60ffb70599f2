package process

import (
	"bufio"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/daryltucker/bench-runner/internal/model"
)

// ErrNoMetrics is returned when the output contains nothing a parser recognises.
var ErrNoMetrics = errors.New("no metrics found in output")

// ParseJSONMetrics reads the last JSON object printed by a launcher script, e.g.
//
//	[ INFO ] {"average_time": 0.0123, "latency": 0.0119, "fps": 81.3}
func ParseJSONMetrics(output string) (model.Metrics, error) {
	var (
		found   bool
		metrics model.Metrics
	)
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		i := strings.IndexByte(line, '{')
		if i < 0 {
			continue
		}
		var m model.Metrics
		if err := json.Unmarshal([]byte(line[i:]), &m); err != nil {
			continue
		}
		if m.Empty() {
			continue
		}
		metrics, found = m, true
	}
	if err := scanner.Err(); err != nil {
		return model.Metrics{}, err
	}
	if !found {
		return model.Metrics{}, ErrNoMetrics
	}
	return metrics, nil
}

var (
	// benchmark_app style report lines; values are in milliseconds except FPS.
	throughputRegex = regexp.MustCompile(`Throughput:\s*([\d.]+)\s*FPS`)
	medianRegex     = regexp.MustCompile(`Median:\s*([\d.]+)\s*ms`)
	averageRegex    = regexp.MustCompile(`Average:\s*([\d.]+)\s*ms`)
	latencyRegex    = regexp.MustCompile(`Latency:\s*([\d.]+)\s*ms`)
)

// ParseBenchmarkAppMetrics reads the summary printed by C++ benchmark binaries.
func ParseBenchmarkAppMetrics(output string) (model.Metrics, error) {
	var m model.Metrics
	if v, ok := lastFloat(throughputRegex, output); ok {
		m.FPS = v
	}
	if v, ok := lastFloat(averageRegex, output); ok {
		m.AverageTime = v / 1000
	}
	if v, ok := lastFloat(medianRegex, output); ok {
		m.Latency = v / 1000
	} else if v, ok := lastFloat(latencyRegex, output); ok {
		m.Latency = v / 1000
	}
	if m.Empty() {
		return m, ErrNoMetrics
	}
	return m, nil
}

func lastFloat(re *regexp.Regexp, s string) (float64, bool) {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
