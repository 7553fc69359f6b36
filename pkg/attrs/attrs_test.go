package attrs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNames(t *testing.T) {
	tbl := Default()

	tests := []struct {
		in, want string
	}{
		{"fontsize", "fontSize"},
		{"FONTCOLOR", "fontColor"},
		{"backgroundColor", "backgroundColor"},
		{"maxvalue", "maxValue"},
		{"paddingtop", "paddingTop"},
		{"text", "text"},
		{"unknownAttr", "unknownAttr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.Name(tt.in))
		})
	}
}

func TestDefaultValues(t *testing.T) {
	tbl := Default()
	assert.Equal(t, FillParent, tbl.Value("100%"))
	assert.Equal(t, "50%", tbl.Value("50%"))
	assert.Equal(t, "Hello", tbl.Value("Hello"))
}

func TestParseOverrides(t *testing.T) {
	tbl := Default()
	err := tbl.Parse([]byte(`
names:
  bgColor: backgroundColor
  fontsize: textSize
values:
  "wrap": "-2"
`))
	require.NoError(t, err)

	assert.Equal(t, "backgroundColor", tbl.Name("BGCOLOR"))
	assert.Equal(t, "textSize", tbl.Name("fontSize"), "override replaces default")
	assert.Equal(t, "-2", tbl.Value("Wrap"))
	assert.Equal(t, FillParent, tbl.Value("100%"))
}

func TestParseInvalid(t *testing.T) {
	assert.Error(t, New().Parse([]byte("names: [not, a, map]")))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("names:\n  title: text\n"), 0o644))

	tbl := New()
	require.NoError(t, tbl.LoadFile(path))
	assert.Equal(t, "text", tbl.Name("Title"))

	assert.Error(t, tbl.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestIsContainerRoot(t *testing.T) {
	for _, typ := range []string{"Screen", "TabScreen", "StackScreen"} {
		assert.True(t, IsContainerRoot(typ), typ)
	}
	for _, typ := range []string{"Button", "VerticalLayout", "Dialog", "screen"} {
		assert.False(t, IsContainerRoot(typ), typ)
	}
}
