package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `package sample

// @sdg Goal13
// @carbonBudget 1.0 kWh
//
// @sdg Goal9
func Process() {
	println("work")
}

type Server struct{}

// Serve handles requests.
func (s *Server) Serve() {}

// @sdg Goal7
var handler = func() {
	println("handle")
}

var notAFunc = 42
`

func TestLoadSource_CollectsDeclarationsInOrder(t *testing.T) {
	l := NewLoader()

	decls, err := l.LoadSource("sample.go", sampleSource)
	require.NoError(t, err)
	require.Len(t, decls, 3)

	assert.Equal(t, "Process", decls[0].Name)
	assert.Equal(t, "Server.Serve", decls[1].Name)
	assert.Equal(t, "handler", decls[2].Name)
}

func TestLoadSource_SplitsStackedDocBlocks(t *testing.T) {
	l := NewLoader()

	decls, err := l.LoadSource("sample.go", sampleSource)
	require.NoError(t, err)

	require.Len(t, decls[0].DocBlocks, 2)
	assert.Contains(t, decls[0].DocBlocks[0], "@sdg Goal13")
	assert.Contains(t, decls[0].DocBlocks[0], "@carbonBudget 1.0 kWh")
	assert.Contains(t, decls[0].DocBlocks[1], "@sdg Goal9")
}

func TestLoadSource_Location(t *testing.T) {
	l := NewLoader()

	decls, err := l.LoadSource("sample.go", sampleSource)
	require.NoError(t, err)

	assert.Equal(t, "sample.go", decls[0].Location.File)
	assert.Greater(t, decls[0].Location.Line, 1)
}

func TestLoadSource_FunctionValueCarriesDoc(t *testing.T) {
	l := NewLoader()

	decls, err := l.LoadSource("sample.go", sampleSource)
	require.NoError(t, err)

	require.Len(t, decls[2].DocBlocks, 1)
	assert.Contains(t, decls[2].DocBlocks[0], "@sdg Goal7")
	require.NotNil(t, decls[2].Body)
}

func TestLoadDir_SkipsTestFilesAndBadSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.go"), "package p\n\nfunc A() {}\n")
	writeFile(t, filepath.Join(dir, "good_test.go"), "package p\n\nfunc B() {}\n")
	writeFile(t, filepath.Join(dir, "broken.go"), "package p\n\nfunc {{{\n")

	l := NewLoader()
	decls, err := l.LoadDir(dir)
	require.NoError(t, err)

	require.Len(t, decls, 1)
	assert.Equal(t, "A", decls[0].Name)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
