package diffstat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gopatch/pkg/lines"
)

func TestSummaryRangeBasic(t *testing.T) {
	src := lines.Sequence{
		"---\n",
		" a/foo.go | 4 +++-\n",
		" b/bar.go | 2 --\n",
		" 2 files changed, 3 insertions(+), 2 deletions(-)\n",
		"diff --git a/foo.go b/foo.go\n",
	}
	start, end, ok := SummaryRangeAt(src, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)
}

func TestSummaryRangeEmpty(t *testing.T) {
	src := lines.Sequence{"---\n", "\n", " 0 files changed\n"}
	start, end, ok := SummaryRangeAt(src, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)
}

func TestSummaryRangeNoMatch(t *testing.T) {
	src := lines.Sequence{"diff --git a/foo.go b/foo.go\n"}
	_, _, ok := SummaryRangeAt(src, 0)
	assert.False(t, ok)
}
