package pattern

import (
	"testing"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRegex(t *testing.T) {
	assert.True(t, IsRegex("^app-.*\\.log$"))
	assert.True(t, IsRegex("(foo|bar)"))
	assert.True(t, IsRegex("a+b"))
	assert.False(t, IsRegex("app-*"))
	assert.False(t, IsRegex("file?.txt"))
	assert.False(t, IsRegex("[a-z]*.csv"))
}

func TestMatch_Glob(t *testing.T) {
	cases := []struct {
		pattern, candidate string
		want               bool
	}{
		{"app-*", "app-server.log", true},
		{"app-*", "web-server.log", false},
		{"*.txt", "notes.txt", true},
		{"*.txt", "notes.txt.bak", false},
		{"logs/*.log", "logs/2026/app.log", false}, // * must not cross "/"
		{"file?.txt", "file1.txt", true},
		{"file?.txt", "file10.txt", false},
		{"[a-z]*.csv", "report.csv", true},
		{"[a-z]*.csv", "Report.csv", false},
		{"[!a-z]*.csv", "Report.csv", true},
		{"[!a-z]*.csv", "report.csv", false},
	}

	for _, c := range cases {
		got, err := Match(c.pattern, c.candidate)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Match(%q, %q)", c.pattern, c.candidate)
	}
}

func TestMatch_Regex(t *testing.T) {
	ok, err := Match("^app-\\d+\\.log$", "app-42.log")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match("^app-\\d+\\.log$", "app-42.log.bak")
	require.NoError(t, err)
	assert.False(t, ok, "regex matching must be anchored")

	ok, err = Match("(foo|bar)baz", "foobaz")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatch_InvalidPattern(t *testing.T) {
	_, err := Match("(unterminated", "anything")
	require.Error(t, err)
	var e *s3clierrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, s3clierrors.KindPatternError, e.Kind)

	_, err = Match("[unterminated", "anything")
	require.Error(t, err)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, s3clierrors.KindPatternError, e.Kind)
}

func TestCompile(t *testing.T) {
	m, err := Compile("app-*")
	require.NoError(t, err)
	assert.True(t, m.Match("app-server.log"))
	assert.False(t, m.Match("web-server.log"))

	_, err = Compile("(unterminated")
	require.Error(t, err)
}
