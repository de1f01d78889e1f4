package replace_test

import (
	"testing"

	"github.com/kkyr/gitrewrite/replace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplace(t *testing.T) {
	r, err := replace.New("foo", "bar")
	require.NoError(t, err)

	out, count := r.Replace("foo.txt")
	assert.Equal(t, "bar.txt", out)
	assert.Equal(t, 1, count)

	out, count = r.Replace("README.md")
	assert.Equal(t, "README.md", out)
	assert.Equal(t, 0, count)
}

func TestReplaceGlobal(t *testing.T) {
	r, err := replace.New("a", "bb")
	require.NoError(t, err)

	out, count := r.Replace("banana")
	assert.Equal(t, "bbbnbbnbb", out)
	assert.Equal(t, 3, count)
}

func TestReplaceBackreference(t *testing.T) {
	r, err := replace.New(`(\w+)@old\.example`, "$1@new.example")
	require.NoError(t, err)

	out, count := r.Replace("reported by alice@old.example")
	assert.Equal(t, "reported by alice@new.example", out)
	assert.Equal(t, 1, count)
}

func TestReplaceNoopPattern(t *testing.T) {
	// "^$" matches only the empty string, so any non-empty field is
	// returned unchanged - the clean no-op configuration (spec.md §8
	// Round-trips).
	r, err := replace.New("^$", "anything")
	require.NoError(t, err)

	out, count := r.Replace("not empty")
	assert.Equal(t, "not empty", out)
	assert.Equal(t, 0, count)
}

func TestNewInvalidPattern(t *testing.T) {
	_, err := replace.New("(unclosed", "x")
	assert.Error(t, err)
}
