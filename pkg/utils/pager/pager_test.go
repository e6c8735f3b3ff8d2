//go:build !windows

package pager

import (
	"bytes"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPagerFromEnv(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	t.Setenv("SQLCTL_PAGER", "cat")
	out := new(bytes.Buffer)
	p, err := New(out)
	require.NoError(t, err)
	require.False(t, p.HasColors())
	require.NoError(t, p.Start())
	fmt.Fprintln(p, "hello")
	require.NoError(t, p.Close())
	require.Equal(t, "hello\n", out.String())
}

func TestNilPagerHasColors(t *testing.T) {
	var p *Pager
	require.True(t, p.HasColors())
}

func TestHasFlag(t *testing.T) {
	require.True(t, hasFlag([]string{"-RS"}, "-R"))
	require.True(t, hasFlag([]string{"-S", "-R"}, "-R"))
	require.False(t, hasFlag([]string{"--raw"}, "-R"))
}
