package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/rawsock/api"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "backend.name")
	assert.Contains(t, out, "platform.cpus")
}

func TestInvalidGlobalFlags(t *testing.T) {
	_, err := run(t, "--backlog", "0", "info")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "chatty", "info")
	assert.Error(t, err)
}

func TestParseHelpers(t *testing.T) {
	f, err := parseFamily("ipv6")
	require.NoError(t, err)
	assert.Equal(t, api.FamilyIPv6, f)
	_, err = parseFamily("ipx")
	assert.Error(t, err)

	typ, proto, err := parseType("raw", api.FamilyIPv6)
	require.NoError(t, err)
	assert.Equal(t, api.TypeRaw, typ)
	assert.Equal(t, api.ProtoICMPv6, proto)
	_, _, err = parseType("seqpacket", api.FamilyIPv4)
	assert.Error(t, err)
}
