package cmd

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestScript drives the CLI end to end: each testdata/script/*.txtar file
// execs the activeexpr binary (built once per test run as a re-exec of this
// test binary, per TestMain below) and asserts on its stdout/stderr.
//
// Grounded on cuelang.org/go's cmd/cue/cmd script-test harness, trimmed down
// to the one external command this CLI actually needs.
func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:                 "testdata/script",
		RequireExplicitExec: true,
		RequireUniqueNames:  true,
	})
}

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"activeexpr": Main,
	}))
}
