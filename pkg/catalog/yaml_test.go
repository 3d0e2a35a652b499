package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
name: minimal
robot_types:
  - name: Iontec
    code: 1
    variants: ["KR 20 R3100 Iontec"]
variants:
  - {name: "KR 20 R3100 Iontec", code: 23}
grippers:
  - {name: Hydraulic, code: 65}
protocols: [WIFI, EtherCAT]
addons: [ConveyorBelt, FSD]
`

func TestParse_Minimal(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "minimal", c.Name())
	assert.Equal(t, []string{"Iontec"}, c.RobotTypes().Names())
	assert.Equal(t, []string{"WIFI", "EtherCAT"}, c.Protocols().Names())
	assert.Equal(t, []string{"KR 20 R3100 Iontec"}, c.VariantsOf("Iontec"))

	code, ok := c.Grippers().Lookup("Hydraulic")
	assert.True(t, ok)
	assert.Equal(t, AttrCode(65), code)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("robot_types: [unclosed"))
	assert.ErrorContains(t, err, "YAML parse error")
}

func TestParse_CodeOverflow(t *testing.T) {
	data := strings.Replace(minimalYAML, "code: 65", "code: 70000", 1)
	_, err := Parse([]byte(data))
	assert.ErrorContains(t, err, "YAML decode error")
}

func TestParse_LineNumbers(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantLine string
		wantErr  error
	}{
		{
			name: "duplicate gripper",
			yaml: `robot_types:
  - {name: Iontec, code: 1}
variants:
  - {name: V1, code: 23}
grippers:
  - {name: Hydraulic, code: 65}
  - {name: Hydraulic, code: 66}
protocols: [WIFI]
addons: [FSD]
`,
			wantLine: "line 7:",
			wantErr:  ErrDuplicateName,
		},
		{
			name: "zero code",
			yaml: `robot_types:
  - {name: Iontec, code: 1}
variants:
  - {name: V1, code: 23}
  - {name: V2}
grippers:
  - {name: Hydraulic, code: 65}
protocols: [WIFI]
addons: [FSD]
`,
			wantLine: "line 5:",
			wantErr:  ErrZeroCode,
		},
		{
			name: "duplicate addon",
			yaml: `robot_types:
  - {name: Iontec, code: 1}
variants:
  - {name: V1, code: 23}
grippers:
  - {name: Hydraulic, code: 65}
protocols: [WIFI]
addons:
  - FSD
  - FSD
`,
			wantLine: "line 10:",
			wantErr:  ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "error = %v", err)
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantLine), "error = %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robots.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", c.Name())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading catalog")
}

func TestMarshal_RoundTrip(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	data, err := Marshal(c)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, c.Definition(), back.Definition())
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Same(t, c, MustDefault())

	assert.Equal(t, "default", c.Name())
	assert.Equal(t, 6, c.RobotTypes().Len())
	assert.Equal(t, 16, c.Variants().Len())
	assert.Equal(t, 16, c.Grippers().Len())
	assert.Equal(t, MaxFlags, c.Protocols().Len())
	assert.Equal(t, MaxFlags, c.Addons().Len())

	code, _ := c.Variants().Lookup("KR 20 R3100 Iontec")
	assert.Equal(t, AttrCode(23), code)
	code, _ = c.Grippers().Lookup("Welding Torch")
	assert.Equal(t, AttrCode(80), code)

	first, _ := c.Protocols().At(0)
	last, _ := c.Protocols().At(15)
	assert.Equal(t, "WIFI", first)
	assert.Equal(t, "LonWorks", last)

	// Every variant belongs to exactly one family.
	for _, v := range c.Variants().Names() {
		_, ok := c.TypeOfVariant(v)
		assert.True(t, ok, "variant %q has no robot type", v)
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Same(t, MustDefault(), c)
}
