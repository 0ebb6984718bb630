package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestIsInteger(t *testing.T) {
	testData := []struct {
		Content string
		Expect  bool
	}{
		{Content: "0", Expect: true},
		{Content: "1024", Expect: true},
		{Content: "", Expect: false},
		{Content: "1.5", Expect: false},
		{Content: "$1", Expect: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.Expect, IsInteger(data.Content), data.Content)
	}
}

func TestReplaceBytes(t *testing.T) {
	assert.Equal(t, "_1_5e_3", ReplaceBytes("-1.5e-3", "-.", '_'))
	assert.Equal(t, "record_", ReplaceBytes("record?", "!?", '_'))
	assert.Equal(t, "abc", ReplaceBytes("abc", "!?", '_'))
}

func TestEndsWithWordByte(t *testing.T) {
	assert.True(t, EndsWithWordByte("var"))
	assert.True(t, EndsWithWordByte("$1"))
	assert.False(t, EndsWithWordByte("f("))
	assert.False(t, EndsWithWordByte(""))
}
