package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/daryltucker/bench-runner/internal/model"
)

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.ResultRow{sampleRow(0, model.Success), sampleRow(1, model.Failure)}

	RenderSummary(&buf, rows, model.Failure, 3*time.Second)

	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "inference benchmark results (3.0s)")
	assert.Contains(t, out, "openvino dldt")
	assert.Contains(t, out, "160.00")
	assert.Contains(t, out, "1/2 passed")
	assert.Contains(t, out, "unknown framework")
}

func TestRenderSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, nil, model.Success, 0)
	assert.Contains(t, strings.ToLower(buf.String()), "0/0 passed")
}
