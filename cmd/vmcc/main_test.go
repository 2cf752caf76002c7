package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	require.NotEmpty(t, version)
}

func writeTempSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestCompileFileEmitsAssembly(t *testing.T) {
	path := writeTempSource(t, `
int add(int a, int b) {
	return a + b;
}

int main(void) {
	return add(1, 2);
}
`)
	outPath := filepath.Join(filepath.Dir(path), "out.s")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-o", outPath, path})
	require.NoError(t, cmd.Execute())

	asm, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(asm), "= add")
	require.Contains(t, string(asm), "= main")
}

func TestCompileFileReportsFatalDiagnostic(t *testing.T) {
	path := writeTempSource(t, `int main(void) { return )); }`)
	outPath := filepath.Join(filepath.Dir(path), "out.s")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-o", outPath, path})
	err := cmd.Execute()

	require.Error(t, err)
	require.Contains(t, errOut.String(), "vmcc:")
}

func TestGlobalInitializerIsEmitted(t *testing.T) {
	path := writeTempSource(t, `
int counter = 41;

int bump(void) {
	return counter + 1;
}
`)
	outPath := filepath.Join(filepath.Dir(path), "out.s")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-o", outPath, path})
	require.NoError(t, cmd.Execute())

	asm, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(asm), "= counter")
	// A global with a parsed initializer must emit a data item, not the
	// "zero N" an uninitialised (or, formerly, a silently-dropped) global
	// initializer falls back to.
	require.NotContains(t, string(asm), "zero 4")
}

func TestReplaceExtension(t *testing.T) {
	require.Equal(t, "in.s", replaceExtension("/tmp/foo/in.c", ".s"))
	require.Equal(t, "in.s", replaceExtension("in.c", ".s"))
}

func TestUnrecognizedStdIsAFatalCLIError(t *testing.T) {
	path := writeTempSource(t, `int main(void) { return 0; }`)
	outPath := filepath.Join(filepath.Dir(path), "out.s")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--std=c99", "-o", outPath, path})
	err := cmd.Execute()

	require.Error(t, err)
	require.Contains(t, err.Error(), "--std")
}

func TestRecognizedStdIsAccepted(t *testing.T) {
	path := writeTempSource(t, `int main(void) { return 0; }`)
	outPath := filepath.Join(filepath.Dir(path), "out.s")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--std=gnu17", "-o", outPath, path})
	require.NoError(t, cmd.Execute())
}

func TestWarningFlagSuppressesAttributeWarning(t *testing.T) {
	path := writeTempSource(t, `__attribute__((noreturn)) int main(void) { return 0; }`)
	outPath := filepath.Join(filepath.Dir(path), "out.s")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-fno-attributes", "-o", outPath, path})
	require.NoError(t, cmd.Execute())
	require.NotContains(t, errOut.String(), "attribute")
}

func TestAttributeWarningIsOnByDefault(t *testing.T) {
	path := writeTempSource(t, `__attribute__((noreturn)) int main(void) { return 0; }`)
	outPath := filepath.Join(filepath.Dir(path), "out.s")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-o", outPath, path})
	require.NoError(t, cmd.Execute())
	require.Contains(t, errOut.String(), "attribute")
}
