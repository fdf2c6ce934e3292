package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFindings(t *testing.T) {
	content := `[{"severity":"high","rulePack":"health-claims","description":"d","evidence":"e","guidance":"g","fixOptions":["a","b"]}]`

	raws, err := parseFindings(content)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "high", raws[0].Severity)
	assert.Equal(t, []string{"a", "b"}, raws[0].FixOptions)
}

func TestParseFindings_EmptyArray(t *testing.T) {
	raws, err := parseFindings("[]")
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestParseFindings_Invalid(t *testing.T) {
	for _, content := range []string{
		"",
		"The content looks compliant to me.",
		`{"severity":"high"}`, // object, not array
		`[{"severity":}]`,
	} {
		_, err := parseFindings(content)
		assert.Error(t, err, "content: %q", content)
	}
}

func TestParseFindings_StripsFences(t *testing.T) {
	fenced := "```json\n[{\"severity\":\"low\"}]\n```"
	raws, err := parseFindings(fenced)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "low", raws[0].Severity)
}

func TestParsePatch(t *testing.T) {
	patch, err := parsePatch("```\n{\"guidance\":\"better text\",\"fixOptions\":[\"x\",\"y\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "better text", patch.Guidance)
	assert.Equal(t, []string{"x", "y"}, patch.FixOptions)

	_, err = parsePatch("no json here")
	assert.Error(t, err)
}
