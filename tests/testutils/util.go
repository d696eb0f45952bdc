// Package testutils wires the integration suite to the meristem binary.
package testutils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"
)

// binaryEnv overrides the binary under test, for out-of-tree builds.
const binaryEnv = "MERISTEM_BINARY"

// Setup creates a test case running the meristem binary. By default the
// binary is expected at <repo>/bin/meristem.
func Setup() *test.Case {
	return agar.Setup(binaryPath())
}

func binaryPath() string {
	if path := os.Getenv(binaryEnv); path != "" {
		return path
	}

	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled
	repoRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))

	return filepath.Join(repoRoot, "bin", "meristem")
}
