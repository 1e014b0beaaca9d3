package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/g3d/pkg/chunk"
	"github.com/chazu/g3d/pkg/g3d"
	"github.com/chazu/g3d/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log.level=error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// writeFixture writes a quad and a triangle. Vertex 4 duplicates vertex 1
// and vertex 5 is unused.
func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	g, err := mesh.FromPolygons(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {1, 0, 0}, {5, 5, 5}, {2, 0, 0}},
		[]int32{0, 1, 2, 3, 4, 6, 2},
		[]int32{4, 3},
	)
	require.NoError(t, err)
	path := filepath.Join(dir, "fixture.g3d")
	require.NoError(t, writeContainer(path, g.G3D, false))
	return path
}

func readGeometry(t *testing.T, path string) *mesh.Geometry {
	t.Helper()
	c, err := readContainer(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	g, err := mesh.New(c)
	require.NoError(t, err)
	return g
}

func TestInfo(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	out, err := run(t, "info", path)
	require.NoError(t, err)
	require.Contains(t, out, "header:   g3d 1.0.0")
	require.Contains(t, out, "vertices: 7")
	require.Contains(t, out, "corners:  7")
	require.Contains(t, out, "faces:    2 (variable size)")
	require.Contains(t, out, "g3d:vertex:vertex:0:float32:3")
	require.Contains(t, out, "g3d:facesize:face:0:int32:1")
}

func TestInfoMissingFile(t *testing.T) {
	_, err := run(t, "info", filepath.Join(t.TempDir(), "nope.g3d"))
	require.Error(t, err)
}

func TestInfoNotAContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.g3d")
	require.NoError(t, os.WriteFile(path, []byte("not a container"), 0o644))
	_, err := run(t, "info", path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	out, err := run(t, "validate", path)
	require.NoError(t, err)
	require.Contains(t, out, "ok (7 vertices, 2 faces)")
}

func TestValidateRejectsBadIndex(t *testing.T) {
	c, err := g3d.New(
		g3d.Vertices([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
		g3d.Indices([]int32{0, 1, 7}),
	)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bad.g3d")
	require.NoError(t, writeContainer(path, c, false))

	_, err = run(t, "validate", path)
	require.Error(t, err)
	require.True(t, errors.Is(err, g3d.ErrSchemaViolation), "got %v", err)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)

	tests := []struct {
		name     string
		flags    []string
		vertices int
		faces    int
		tri      bool
	}{
		{"copy", nil, 7, 2, false},
		{"triangulate", []string{"--triangulate"}, 7, 3, true},
		{"compact", []string{"--compact"}, 6, 2, false},
		{"weld and compact", []string{"--weld", "--compact"}, 5, 2, false},
		{"all", []string{"--triangulate", "--weld", "--compact"}, 5, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".g3d")
			_, err := run(t, append([]string{"convert", in, out}, tt.flags...)...)
			require.NoError(t, err)

			g := readGeometry(t, out)
			require.Equal(t, tt.vertices, g.NumVertices())
			require.Equal(t, tt.faces, g.NumFaces)
			require.Equal(t, tt.tri, g.IsTriMesh())
		})
	}
}

func TestConvertCompressFromEnv(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	out := filepath.Join(dir, "packed.g3d")
	t.Setenv("G3D_COMPRESS", "true")

	_, err := run(t, "convert", in, out)
	require.NoError(t, err)

	blob, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, chunk.Magic[:], blob[:len(chunk.Magic)])
	require.Equal(t, byte(1), blob[len(chunk.Magic)], "snappy flag")
	require.Equal(t, 7, readGeometry(t, out).NumVertices())
}

func TestConvertConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	cfg := filepath.Join(dir, "g3d.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("compact: true\n"), 0o644))
	out := filepath.Join(dir, "compact.g3d")

	_, err := run(t, "--config", cfg, "convert", in, out)
	require.NoError(t, err)
	require.Equal(t, 6, readGeometry(t, out).NumVertices())
}

const shelfScript = `
(defpart "side" (box :size (vec3 20 100 100)) :material "oak")
(defpart "top" (box :size (vec3 120 100 20)) :material "pine")

(assembly "shelf"
  (part "side")
  (place (part "side") :at (vec3 100 0 0))
  (place (part "top") :at (vec3 0 0 100)))
`

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "shelf.lisp")
	require.NoError(t, os.WriteFile(script, []byte(shelfScript), 0o644))
	out := filepath.Join(dir, "shelf.g3d")

	stdout, err := run(t, "build", script, out, "--cells", "40", "--compress")
	require.NoError(t, err)
	require.Contains(t, stdout, "wrote "+out)

	g := readGeometry(t, out)
	require.True(t, g.IsTriMesh())
	require.Greater(t, g.NumFaces, 0)
	require.ElementsMatch(t, []int32{0, 1, 2}, lo.Uniq(g.ObjectIDs))
	require.ElementsMatch(t, []int32{0, 1}, lo.Uniq(g.MaterialIDs))

	lo3, hi3 := g.Bounds()
	require.InDelta(t, 0, lo3.X(), 3)
	require.InDelta(t, 120, hi3.X(), 3)
	require.InDelta(t, 120, hi3.Z(), 3)
}

func TestBuildExampleScript(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bracket.g3d")
	_, err := run(t, "build", filepath.Join("..", "..", "examples", "bracket.lisp"), out, "--cells", "64")
	require.NoError(t, err)
	g := readGeometry(t, out)
	require.Len(t, lo.Uniq(g.ObjectIDs), 4)
	require.ElementsMatch(t, []int32{0, 1}, lo.Uniq(g.MaterialIDs))
}

func TestBuildReportsScriptErrors(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "broken.lisp")
	require.NoError(t, os.WriteFile(script, []byte(`(box :size`), 0o644))

	stdout, err := run(t, "build", script, filepath.Join(dir, "out.g3d"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "evaluation errors")
	require.Contains(t, stdout, "broken.lisp")
	require.NoFileExists(t, filepath.Join(dir, "out.g3d"))
}

func TestBuildPrintsWarnings(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "loose.lisp")
	src := `
(defpart "used" (box :size (vec3 10 10 10)))
(defpart "unused" (box :size (vec3 5 5 5)))
(assembly "a" (part "used"))
`
	require.NoError(t, os.WriteFile(script, []byte(src), 0o644))

	stdout, err := run(t, "build", script, filepath.Join(dir, "out.g3d"), "--cells", "8")
	require.NoError(t, err)
	require.Contains(t, stdout, "warning:")
	require.Contains(t, stdout, "unused")
}

func TestBadLogLevel(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", path, "--log.level", "loud"})
	require.Error(t, cmd.Execute())
}
