package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecMode(t *testing.T) {
	t.Parallel()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"--engine", "sqlite",
		"-e", "table users id, name, age",
		"-e", "from users",
		"-e", "select id",
		"-e", "where age >= 18",
		"-e", "show",
	})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "SELECT users.id\nFROM users\nWHERE users.age >= 18\n")
}

func TestExecModeStopsOnError(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := run(&out, &out, options{
		engine:   "sqlite",
		quote:    "none",
		commands: []string{"from users", "show"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from users")
	assert.NotContains(t, out.String(), "SELECT")
}

func TestExecModeWithSchemaAndQuote(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  - name: users\n    columns: [id, name]\n"), 0600))

	var out, errOut bytes.Buffer
	err := run(&out, &errOut, options{
		engine:   "postgres",
		schema:   path,
		quote:    "ansi",
		commands: []string{"select users.name", "show"},
	})
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "Loaded 1 table(s)")
	assert.Contains(t, out.String(), "SELECT \"users\".\"name\"\nFROM \"users\"")
}

func TestConfiguredSessionRejectsBadFlags(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	_, err := newConfiguredSession(options{engine: "oracle", quote: "none"}, nil, &out, &out)
	assert.Error(t, err)

	_, err = newConfiguredSession(options{engine: "sqlite", quote: "fancy"}, nil, &out, &out)
	assert.Error(t, err)

	_, err = newConfiguredSession(options{engine: "sqlite", quote: "none", schema: "/does/not/exist.yaml"}, nil, &out, &out)
	assert.Error(t, err)
}

func TestConfiguredSessionWarnsOnFailedConnect(t *testing.T) {
	t.Parallel()
	var out, errOut bytes.Buffer
	sess, err := newConfiguredSession(options{
		engine: "mysql",
		quote:  "none",
		dsn:    "not a dsn",
	}, nil, &out, &errOut)
	require.NoError(t, err)
	defer sess.close()
	assert.Nil(t, sess.intro)
	assert.Contains(t, errOut.String(), "connect failed")
}
