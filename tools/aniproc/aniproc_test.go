package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/anmerge/cookbook"
)

const descriptor = "animation = man.an\n;ADD_FRAME=5\n[walk]\n\tstart_time = 5\n\tend_time = 9\n\tevent = \"sndalliace_manhit\", 6\n"

func TestProcessShifts(t *testing.T) {
	out, err := process(&options{}, []byte(descriptor))
	require.NoError(t, err)
	assert.Equal(t, "animation = man.an\n[walk]\n\tstart_time = 10\n\tend_time = 14\n\tevent = \"sndalliace_manhit\", 11\n", string(out))
}

func TestProcessSounds(t *testing.T) {
	out, err := process(&options{sounds: true}, []byte(descriptor))
	require.NoError(t, err)
	assert.Contains(t, string(out), "\tevent = \"SndAlliace_W_manhit\", 6\n")
}

func TestProcessStrip(t *testing.T) {
	cbPath := filepath.Join(t.TempDir(), "man.json")
	out, err := process(&options{strip: cbPath}, []byte(descriptor))
	require.NoError(t, err)
	assert.Contains(t, string(out), "\tstart_time = 1\n\tend_time = 5\n")

	data, err := os.ReadFile(cbPath)
	require.NoError(t, err)
	cb, err := cookbook.Load("man.json", data)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 1}, {10, 15}}, cb.FrameRanges)
}

func TestCopySubAnims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "man.ani")
	require.NoError(t, os.WriteFile(path, []byte(descriptor), 0644))
	require.NoError(t, copySubAnims(path))

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "man_90.ani"))
	require.NoError(t, err)
	assert.Equal(t, descriptor, string(data))
}
