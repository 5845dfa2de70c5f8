package dotenv_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzu/strikts/dotenv"
)

func ptr(s string) *string { return &s }

func newDotEnv(env map[string]string, file map[string]*string, order ...string) *dotenv.DotEnv {
	return dotenv.New(dotenv.MapEnvProvider(env), dotenv.MappingOf(order, file))
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOnlyInEnvironment(t *testing.T) {
	d := newDotEnv(map[string]string{"FOO": "env"}, nil)

	assert.True(t, d.IsPresent("FOO"))
	v, err := d.Fetch("FOO")
	require.NoError(t, err)
	assert.Equal(t, "env", v)
	assert.Equal(t, "env", d.FetchOr("FOO", "default"))
	v, ok := d.FetchOrNull("FOO")
	assert.True(t, ok)
	assert.Equal(t, "env", v)
	assert.Equal(t, dotenv.LayerEnv, d.Source("FOO"))
}

func TestOnlyInFile(t *testing.T) {
	d := newDotEnv(nil, map[string]*string{"FOO": ptr("dotenv")}, "FOO")

	assert.True(t, d.IsPresent("FOO"))
	v, err := d.Fetch("FOO")
	require.NoError(t, err)
	assert.Equal(t, "dotenv", v)
	assert.Equal(t, "dotenv", d.FetchOr("FOO", "default"))
	v, ok := d.FetchOrNull("FOO")
	assert.True(t, ok)
	assert.Equal(t, "dotenv", v)
	assert.Equal(t, dotenv.LayerFile, d.Source("FOO"))
}

func TestEnvironmentWins(t *testing.T) {
	d := newDotEnv(map[string]string{"FOO": "env"}, map[string]*string{"FOO": ptr("dotenv")}, "FOO")

	v, err := d.Fetch("FOO")
	require.NoError(t, err)
	assert.Equal(t, "env", v)
	assert.Equal(t, "env", d.FetchOr("FOO", "default"))
	v, _ = d.FetchOrNull("FOO")
	assert.Equal(t, "env", v)
	assert.Equal(t, "env", d.MustFetch("FOO"))
}

func TestEmptyEnvironmentValueStillWins(t *testing.T) {
	d := newDotEnv(map[string]string{"FOO": ""}, map[string]*string{"FOO": ptr("dotenv")}, "FOO")

	v, ok := d.FetchOrNull("FOO")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, "", d.AllVariables()["FOO"])
}

func TestAbsentFromBothLayers(t *testing.T) {
	d := newDotEnv(nil, nil)

	assert.False(t, d.IsPresent("FOO"))

	_, err := d.Fetch("FOO")
	require.Error(t, err)
	assert.ErrorIs(t, err, dotenv.ErrMissingVariable)
	var verr *dotenv.VariableError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "FOO", verr.Name)

	v, ok := d.FetchOrNull("FOO")
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, "default", d.FetchOr("FOO", "default"))
	assert.Equal(t, dotenv.LayerNone, d.Source("FOO"))
	assert.Panics(t, func() { d.MustFetch("FOO") })
}

func TestPlaceholderIsNotPresent(t *testing.T) {
	d := newDotEnv(nil, map[string]*string{"QUUX": nil}, "QUUX")

	_, declared := d.FileVariables().Lookup("QUUX")
	assert.True(t, declared, "the file layer does declare the key")

	assert.False(t, d.IsPresent("QUUX"))
	_, err := d.Fetch("QUUX")
	assert.ErrorIs(t, err, dotenv.ErrMissingVariable)
	_, ok := d.FetchOrNull("QUUX")
	assert.False(t, ok)
	assert.Equal(t, "default", d.FetchOr("QUUX", "default"))
}

func TestPlaceholderDoesNotShadowEnvironment(t *testing.T) {
	d := newDotEnv(map[string]string{"QUUX": "env"}, map[string]*string{"QUUX": nil}, "QUUX")
	assert.Equal(t, "env", d.FetchOr("QUUX", "default"))
}

func TestLookupIsExact(t *testing.T) {
	d := newDotEnv(map[string]string{"FOO": "env"}, map[string]*string{"bar": ptr("dotenv")}, "bar")

	assert.False(t, d.IsPresent("foo"))
	assert.False(t, d.IsPresent(" FOO"))
	assert.False(t, d.IsPresent("BAR"))
	assert.True(t, d.IsPresent("bar"))
}

func TestAllVariables(t *testing.T) {
	d := newDotEnv(
		map[string]string{"FOO": "env", "BAR": "env"},
		map[string]*string{
			"BAR":  ptr("dotenv"),
			"BAZ":  ptr("dotenv"),
			"QUX":  ptr("dotenv"),
			"QUUX": nil,
		},
		"BAR", "BAZ", "QUX", "QUUX",
	)

	assert.Equal(t, map[string]string{
		"FOO": "env",
		"BAR": "env",
		"BAZ": "dotenv",
		"QUX": "dotenv",
	}, d.AllVariables())
}

func TestAllVariablesIsFresh(t *testing.T) {
	env := map[string]string{"FOO": "env"}
	d := newDotEnv(env, nil)

	first := d.AllVariables()
	first["INJECTED"] = "x"
	env["LATER"] = "y"

	second := d.AllVariables()
	assert.NotContains(t, second, "INJECTED")
	assert.Equal(t, "y", second["LATER"])
}

func TestIdempotentFetch(t *testing.T) {
	d := newDotEnv(map[string]string{"A": "1"}, map[string]*string{"B": ptr("2")}, "B")
	for i := 0; i < 3; i++ {
		a, err := d.Fetch("A")
		require.NoError(t, err)
		assert.Equal(t, "1", a)
		assert.Equal(t, "2", d.FetchOr("B", "x"))
		_, ok := d.FetchOrNull("C")
		assert.False(t, ok)
	}
}

func TestConcurrentReaders(t *testing.T) {
	d := newDotEnv(map[string]string{"A": "1"}, map[string]*string{"B": ptr("2")}, "B")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "1", d.FetchOr("A", ""))
				assert.Equal(t, "2", d.FetchOr("B", ""))
				assert.Len(t, d.AllVariables(), 2)
			}
		}()
	}
	wg.Wait()
}

func TestSystemProvider(t *testing.T) {
	t.Setenv("STRIKTS_TEST_SYSTEM", "from-process")
	d := dotenv.New(nil, nil)

	assert.Equal(t, "from-process", d.FetchOr("STRIKTS_TEST_SYSTEM", ""))
	assert.Equal(t, "from-process", d.AllVariables()["STRIKTS_TEST_SYSTEM"])

	_, ok := dotenv.SystemEnvProvider{}.Environ()[""]
	assert.False(t, ok, "empty names are filtered")
}

// ─── Construction ─────────────────────────────────────────────────────────────

func TestFromText(t *testing.T) {
	d, err := dotenv.FromText("FOO=dotenv\nBAR\n", dotenv.WithProvider(dotenv.MapEnvProvider{}))
	require.NoError(t, err)

	assert.Equal(t, "dotenv", d.FetchOr("FOO", ""))
	assert.False(t, d.IsPresent("BAR"))
	assert.Empty(t, d.Path())
}

func TestFromTextMalformed(t *testing.T) {
	_, err := dotenv.FromText("=oops")
	assert.ErrorIs(t, err, dotenv.ErrMalformedLine)
}

func TestLoadFile(t *testing.T) {
	path := writeEnv(t, "FOO=dotenv\n")
	d, err := dotenv.LoadFile(path, dotenv.WithProvider(dotenv.MapEnvProvider{}))
	require.NoError(t, err)

	assert.Equal(t, "dotenv", d.FetchOr("FOO", ""))
	assert.Equal(t, path, d.Path())
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeEnv(t, "GOOD=1\nBAD KEY=2\n")
	_, err := dotenv.LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, dotenv.ErrMalformedLine)
	assert.Contains(t, err.Error(), path)
}

func TestLoadFileCompatSyntax(t *testing.T) {
	path := writeEnv(t, "export FOO='single quoted'\n")
	d, err := dotenv.LoadFile(path,
		dotenv.WithProvider(dotenv.MapEnvProvider{}),
		dotenv.WithSyntax(dotenv.SyntaxCompat),
	)
	require.NoError(t, err)
	assert.Equal(t, "single quoted", d.FetchOr("FOO", ""))
}

func TestLoadFileMissingIgnored(t *testing.T) {
	env := dotenv.MapEnvProvider{"FOO": "env"}
	missing, err := dotenv.LoadFile(filepath.Join(t.TempDir(), "nope.env"), dotenv.WithProvider(env))
	require.NoError(t, err)
	empty, err := dotenv.FromText("", dotenv.WithProvider(env))
	require.NoError(t, err)

	for _, name := range []string{"FOO", "BAR"} {
		assert.Equal(t, empty.IsPresent(name), missing.IsPresent(name), name)
		assert.Equal(t, empty.FetchOr(name, "d"), missing.FetchOr(name, "d"), name)
	}
	assert.Equal(t, empty.AllVariables(), missing.AllVariables())
	assert.Equal(t, 0, missing.FileVariables().Len())
}

func TestLoadFileMissingRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.env")
	d, err := dotenv.LoadFile(path, dotenv.RequireFile())
	assert.Nil(t, d)
	require.Error(t, err)
	assert.ErrorIs(t, err, dotenv.ErrFileNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var ferr *dotenv.FileError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, path, ferr.Path)
}

func TestLoadFileDirectoryIsMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := dotenv.LoadFile(dir, dotenv.RequireFile())
	assert.ErrorIs(t, err, dotenv.ErrFileNotFound)

	d, err := dotenv.LoadFile(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, d.FileVariables().Len())
}

func TestRequireFileIf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.env")

	_, err := dotenv.LoadFile(path, dotenv.RequireFileIf(false))
	assert.NoError(t, err)
	_, err = dotenv.LoadFile(path, dotenv.RequireFileIf(true))
	assert.ErrorIs(t, err, dotenv.ErrFileNotFound)
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, dotenv.DefaultFilename), []byte("FOO=dotenv\n"), 0o600))

	d, err := dotenv.Load(dotenv.WithDir(dir), dotenv.WithProvider(dotenv.MapEnvProvider{}))
	require.NoError(t, err)
	assert.Equal(t, "dotenv", d.FetchOr("FOO", ""))
	assert.Equal(t, filepath.Join(dir, dotenv.DefaultFilename), d.Path())
}

func TestLoadDefaultFileFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOO=cwd\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	d, err := dotenv.Load(dotenv.WithProvider(dotenv.MapEnvProvider{}))
	require.NoError(t, err)
	assert.Equal(t, "cwd", d.FetchOr("FOO", ""))
}

func TestLoadDefaultFileMissing(t *testing.T) {
	dir := t.TempDir()

	d, err := dotenv.Load(dotenv.WithDir(dir))
	require.NoError(t, err)
	assert.Equal(t, 0, d.FileVariables().Len())

	_, err = dotenv.Load(dotenv.WithDir(dir), dotenv.RequireFile())
	assert.ErrorIs(t, err, dotenv.ErrFileNotFound)
}

func TestLayerString(t *testing.T) {
	assert.Equal(t, "env", dotenv.LayerEnv.String())
	assert.Equal(t, "file", dotenv.LayerFile.String())
	assert.Equal(t, "none", dotenv.LayerNone.String())
}

func TestZeroValueReadsProcessEnvironment(t *testing.T) {
	t.Setenv("STRIKTS_ZERO_VALUE", "from-env")
	var d dotenv.DotEnv

	assert.True(t, d.IsPresent("STRIKTS_ZERO_VALUE"))
	assert.Equal(t, "from-env", d.FetchOr("STRIKTS_ZERO_VALUE", "x"))
	assert.Equal(t, dotenv.LayerEnv, d.Source("STRIKTS_ZERO_VALUE"))
	assert.Equal(t, "from-env", d.AllVariables()["STRIKTS_ZERO_VALUE"])
	assert.Equal(t, 0, d.FileVariables().Len())

	_, err := d.Fetch("STRIKTS_ZERO_VALUE_MISSING")
	assert.ErrorIs(t, err, dotenv.ErrMissingVariable)
}
