package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapserver.yaml")
	content := `
server:
  api_key: hunter2
git:
  branch: stable
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "branch: stable")
	assert.Contains(t, out.String(), "********")
	assert.NotContains(t, out.String(), "hunter2")
}

func TestConfigCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("build:\n  runner: podman\n"), 0o600))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "-c", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "podman")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "sync", "config"})
}
