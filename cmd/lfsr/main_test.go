// Copyright (C) 2018. See AUTHORS.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacemonkeygo/lfsr"
	"github.com/spacemonkeygo/lfsr/internal/config"
)

// run executes the root command in process and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvDB, config.EnvAddr, config.EnvLog} {
		t.Setenv(k, "")
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Fields(s)
}

func TestNext_Seed(t *testing.T) {
	out, err := run(t, "next", "--seed", "1")
	require.NoError(t, err)
	assert.Equal(t, "32768\n", out)

	out, err = run(t, "next", "--seed", "1", "-n", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"32768", "16384", "8192"}, lines(out))
}

func TestNext_JSON(t *testing.T) {
	out, err := run(t, "next", "--seed", "1", "--count", "2", "--json")
	require.NoError(t, err)

	var resp struct {
		Values []uint16 `json:"values"`
		State  uint16   `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []uint16{0x8000, 0x4000}, resp.Values)
	assert.Equal(t, uint16(0x4000), resp.State)
}

func TestNext_Errors(t *testing.T) {
	_, err := run(t, "next", "--count", "0")
	assert.Error(t, err)

	_, err = run(t, "next", "--seed", "1", "--name", "a", "--db", t.TempDir())
	assert.Error(t, err)

	_, err = run(t, "next", "--seed", "70000")
	assert.Error(t, err)
}

func TestNext_ConfiguredSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lfsr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  in_memory: true
seed:
  deterministic: true
  pcg_state: 4
  pcg_stream: 2
`), 0600))

	out, err := run(t, "--config", path, "next")
	require.NoError(t, err)

	want := lfsr.NewFromSource(lfsr.NewPCG(4, 2)).Next()
	assert.Equal(t, strconv.Itoa(int(want))+"\n", out)
}

func TestEnumerate(t *testing.T) {
	out, err := run(t, "enumerate", "--seed", "1")
	require.NoError(t, err)

	vals := lines(out)
	require.Len(t, vals, lfsr.Period)
	assert.Equal(t, "32768", vals[0])
	assert.Equal(t, "1", vals[len(vals)-1])

	seen := make(map[string]bool, len(vals))
	for _, v := range vals {
		seen[v] = true
	}
	assert.Len(t, seen, lfsr.Period)
	assert.False(t, seen["0"])
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "--seed", "0xace1")
	require.NoError(t, err)
	assert.Equal(t, "ok: period 65535\n", out)

	_, err = run(t, "check", "--seed", "0")
	assert.ErrorIs(t, err, lfsr.ErrIncorrectPeriod)
}

func TestStoreCommands(t *testing.T) {
	db := t.TempDir()

	out, err := run(t, "--db", db, "create", "counter", "--seed", "1")
	require.NoError(t, err)
	assert.Equal(t, "counter 1\n", out)

	out, err = run(t, "--db", db, "next", "--name", "counter", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"32768", "16384"}, lines(out))

	// the stored state carries over to the next run.
	out, err = run(t, "--db", db, "next", "--name", "counter")
	require.NoError(t, err)
	assert.Equal(t, "8192\n", out)

	_, err = run(t, "--db", db, "create", "other")
	require.NoError(t, err)

	out, err = run(t, "--db", db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "counter 8192\n")
	assert.Contains(t, out, "other ")

	_, err = run(t, "--db", db, "delete", "other")
	require.NoError(t, err)
	_, err = run(t, "--db", db, "delete", "other")
	assert.Error(t, err)

	out, err = run(t, "--db", db, "list")
	require.NoError(t, err)
	assert.Equal(t, "counter 8192\n", out)

	_, err = run(t, "--db", db, "next", "--name", "missing")
	assert.Error(t, err)
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "next", "--seed", "1")
	assert.Error(t, err)
}
