package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	os.RemoveAll("./testdata")
	t.Setenv("SQLCTL_HOME", "./testdata")
	defer os.RemoveAll("./testdata")
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"sqlctl", "version"}
	var buf bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdout := os.Stdout
	origStderr := os.Stderr
	os.Stdout = w
	os.Stderr = w
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf.ReadFrom(r)
	}()
	err = run([]string{"version"})
	w.Close()
	<-done
	os.Stdout = origStdout
	os.Stderr = origStderr
	require.NoError(t, err)
	_, err = os.Stat("./testdata")
	require.NoError(t, err)
	vString := buf.String()
	require.True(t, strings.HasPrefix(vString, "v"))
	require.True(t, strings.HasSuffix(vString, "-unofficial\n"))
}
