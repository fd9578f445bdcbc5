package main

import (
	"bytes"
	"fmt"
	"regexp"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]logiface.Level{
		"debug":   logiface.LevelDebug,
		"WARNING": logiface.LevelWarning,
		"err":     logiface.LevelError,
		"crit":    logiface.LevelCritical,
	} {
		got, err := parseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := parseLevel("verbose")
	require.Error(t, err)
}

func TestRootCmd_flags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"quantum", "threads", "iterations", "sleep", "max-threads", "log-level", "wall-clock"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestRootCmd_invalidArgs(t *testing.T) {
	for _, args := range [][]string{
		{"--threads", "0"},
		{"--log-level", "loud"},
		{"--quantum", "0", "--wall-clock"},
		{"unexpected"},
	} {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		assert.Error(t, cmd.Execute(), "%v", args)
	}
}

func TestRun(t *testing.T) {
	var codes []int
	var out bytes.Buffer
	err := run(&out, config{
		logLevel:   "err",
		quantum:    1000,
		threads:    3,
		iterations: 20,
		sleep:      2,
		maxThreads: 10,
		wallClock:  true,
		exit:       func(code int) { codes = append(codes, code) },
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, codes)

	text := out.String()
	assert.Regexp(t, `(?m)^TID\s+QUANTA$`, text)
	for id := 0; id <= 3; id++ {
		assert.Regexp(t, regexp.MustCompile(fmt.Sprintf(`(?m)^%d\s+[1-9]\d*$`, id)), text, "tid %d", id)
	}
	assert.Regexp(t, `(?m)^total quanta: [1-9]\d*$`, text)
	assert.Regexp(t, `(?m)^dispatches: \d+ \(preempt \d+, yield \d+, suspend \d+, exit 3\)$`, text)
	assert.Contains(t, text, "quantum p50=")
}
