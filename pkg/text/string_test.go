package text_test

import (
	"testing"

	"github.com/notepress/notepress/pkg/text"
	"github.com/stretchr/testify/assert"
)

func TestIsBlank(t *testing.T) {
	assert.True(t, text.IsBlank(""))
	assert.True(t, text.IsBlank("   \t"))
	assert.False(t, text.IsBlank(" a "))
}

func TestTrimExtension(t *testing.T) {
	assert.Equal(t, "diagram", text.TrimExtension("diagram.png"))
	assert.Equal(t, "dir/diagram", text.TrimExtension("dir/diagram.png"))
	assert.Equal(t, "noextension", text.TrimExtension("noextension"))
}

func TestSquashBlankLines(t *testing.T) {
	input := `line1


line2

line3
`
	expected := `line1

line2

line3
`
	assert.Equal(t, expected, text.SquashBlankLines(input))
}
