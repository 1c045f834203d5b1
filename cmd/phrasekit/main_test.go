package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclidCmdPrintsToussaintReferencePattern(t *testing.T) {
	cmd := euclidCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--pulses", "3", "--steps", "8", "--offset", "0"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "x ~ ~ x ~ ~ x ~\n", out.String())
}

func TestEuclidCmdRejectsZeroSteps(t *testing.T) {
	cmd := euclidCmd()
	cmd.SetArgs([]string{"--pulses", "1", "--steps", "0"})
	assert.Error(t, cmd.Execute())
}

func TestDemoCmdPrintsFourOnTheFloorAndOffsetSnare(t *testing.T) {
	cmd := demoCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "c-4")
	assert.Contains(t, output, "d-2")
}

func TestPlayCmdRequiresExactlyOneArgument(t *testing.T) {
	cmd := playCmd()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestPlayCmdRunsAgainstASessionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bpm": 120, "beats_per_bar": 4, "samples_per_sec": 44100,
		"rhythms": [{"name": "kick", "step_kind": "beat", "step": 1, "pulses": [1,1], "notes": [36]}]
	}`), 0o644))

	cmd := playCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--samples", "44100"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "played 1 rhythms")
}

func TestRootCmdRegistersAllSubcommands(t *testing.T) {
	root := rootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"euclid", "demo", "play", "monitor"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}
