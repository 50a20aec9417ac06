package preamble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopatch/pkg/lines"
)

func TestParseAtBasic(t *testing.T) {
	src := lines.Sequence{
		"diff --git a/src/preamble.rs b/src/preamble.rs\n",
		"new file mode 100644\n",
		"index 0000000..0503e55\n",
		"--- a/src/preamble.rs\n",
	}
	p, consumed := ParseAt(src, 0)
	require.NotNil(t, p)
	assert.Equal(t, 3, consumed)
	assert.Equal(t, "a/src/preamble.rs", p.AnteFilePath)
	assert.Equal(t, "b/src/preamble.rs", p.PostFilePath)
	assert.Equal(t, 2, p.Extras["index"].LineOffset)
	assert.Equal(t, "0000000..0503e55", p.Extras["index"].Value)
	assert.Equal(t, "100644", p.Extras["new file mode"].Value)
}

func TestParseAtRenameOnly(t *testing.T) {
	src := lines.Sequence{
		"diff --git a/old.go b/new.go\n",
		"similarity index 100%\n",
		"rename from old.go\n",
		"rename to new.go\n",
	}
	p, consumed := ParseAt(src, 0)
	require.NotNil(t, p)
	assert.Equal(t, 4, consumed)
	assert.Equal(t, "new.go", p.Extras["rename to"].Value)
}

func TestParseAtNoMatch(t *testing.T) {
	src := lines.Sequence{"--- a/file\n", "+++ b/file\n"}
	p, consumed := ParseAt(src, 0)
	assert.Nil(t, p)
	assert.Zero(t, consumed)
}

func TestParseAtQuotedPath(t *testing.T) {
	src := lines.Sequence{lines.Line(`diff --git "a/weird file.go" "b/weird file.go"` + "\n")}
	p, consumed := ParseAt(src, 0)
	require.NotNil(t, p)
	assert.Equal(t, 1, consumed)
	assert.Equal(t, "a/weird file.go", p.AnteFilePath)
	assert.Equal(t, "b/weird file.go", p.PostFilePath)
}
