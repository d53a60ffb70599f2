// Package process models one concrete benchmark invocation and its outcome.
package process

import (
	"context"
	"time"

	"github.com/daryltucker/bench-runner/internal/executor"
	"github.com/daryltucker/bench-runner/internal/model"
)

// Parser extracts performance metrics from benchmark output.
type Parser func(output string) (model.Metrics, error)

// TestProcess is one runnable benchmark invocation. It is owned by a single
// orchestrator iteration and is not safe for concurrent use.
type TestProcess struct {
	test     model.TestSpec
	executor executor.Executor
	command  executor.Command
	parse    Parser

	executed bool
	exitCode int
	output   string
	duration time.Duration
	metrics  model.Metrics
	parseErr error
}

// New creates a TestProcess that will run cmd through ex. parse may be nil.
func New(test model.TestSpec, ex executor.Executor, cmd executor.Command, parse Parser) *TestProcess {
	return &TestProcess{
		test:     test,
		executor: ex,
		command:  cmd,
		parse:    parse,
		exitCode: -1,
	}
}

// Execute runs the command and blocks until it finishes. The returned error
// covers spawn failures and timeouts; a non-zero exit is reported by Status.
func (p *TestProcess) Execute(ctx context.Context) error {
	start := time.Now()
	res, err := p.executor.Run(ctx, p.command)
	p.duration = time.Since(start)
	p.executed = true
	p.exitCode = res.ExitCode
	p.output = res.Output
	if err != nil {
		return err
	}

	if p.exitCode == 0 && p.parse != nil {
		p.metrics, p.parseErr = p.parse(p.output)
	}
	return nil
}

// Status is Success only for an executed process that exited with code 0.
func (p *TestProcess) Status() model.ExecutionStatus {
	if !p.executed {
		return model.Failure
	}
	return model.StatusFromExitCode(p.exitCode)
}

func (p *TestProcess) Test() model.TestSpec      { return p.test }
func (p *TestProcess) Command() executor.Command { return p.command }
func (p *TestProcess) ExitCode() int             { return p.exitCode }
func (p *TestProcess) Output() string            { return p.output }
func (p *TestProcess) Duration() time.Duration   { return p.duration }
func (p *TestProcess) Metrics() model.Metrics    { return p.metrics }

// ParseError is the error returned by the metrics parser, if any.
func (p *TestProcess) ParseError() error { return p.parseErr }
