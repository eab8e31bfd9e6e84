package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lakeboot/internal/domain"
)

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	code := h.run("frobnicate", "--config", writeTemplate(t))

	assert.Equal(t, domain.ExitUsage, code)
	assert.Contains(t, h.stderr.String(), `Error: unknown command "frobnicate"`)
	assert.Zero(t, h.totalOpens(), "no engine, storage or metadata access")
}

func TestUnknownCommand_BeforeConfig(t *testing.T) {
	h := newHarness(t)
	code := h.run("--config", "/nonexistent/config.yaml", "frobnicate")

	assert.Equal(t, domain.ExitUsage, code)
	assert.Contains(t, h.stderr.String(), "frobnicate")
	assert.NotContains(t, h.stderr.String(), "not found")
}

func TestZeroArgCommandsRejectUnexpectedPositionalArgs(t *testing.T) {
	tests := [][]string{
		{"version", "extra"},
		{"attach", "extra"},
		{"load-tpch", "--scale", "1", "extra"},
		{"config", "show", "extra"},
		{"config", "extra"},
		{"commands", "extra"},
	}
	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			h := newHarness(t)
			code := h.run(args...)
			assert.Equal(t, domain.ExitUsage, code)
			assert.Contains(t, h.stderr.String(), `unknown command "extra"`)
			assert.Zero(t, h.totalOpens())
		})
	}
}

func TestNoArgsPrintsHelp(t *testing.T) {
	h := newHarness(t)
	code := h.run()
	assert.Equal(t, domain.ExitOK, code)
	assert.Contains(t, h.stdout.String(), "load-tpch")
	assert.Contains(t, h.stdout.String(), "ensure-bucket")
}
