package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	originalVerbose := verbose
	t.Cleanup(func() {
		verbose = originalVerbose
		versionCmd.SetOut(nil)
	})

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)

	verbose = false
	versionCmd.Run(versionCmd, nil)
	if got := buf.String(); got != "secheaders version "+Version+"\n" {
		t.Fatalf("unexpected short version output %q", got)
	}

	buf.Reset()
	verbose = true
	versionCmd.Run(versionCmd, nil)
	if !strings.Contains(buf.String(), "Go Version:") {
		t.Fatalf("expected detailed version output, got %q", buf.String())
	}
}
