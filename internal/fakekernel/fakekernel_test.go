package fakekernel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_Transcript(t *testing.T) {
	in := strings.NewReader("FullForm[D[Sin[x], x]]\nFullForm[Print[1]]\nFullForm[Foo[y]]\nQuit\nFullForm[I*I]\n")
	var out bytes.Buffer

	require.NoError(t, Serve(in, &out, DefaultScript()))

	want := banner + "\nIn[1]:= " +
		"Out[1]//FullForm= Cos[x]\n\nIn[2]:= " +
		"1\nIn[3]:= " +
		"Out[3]//FullForm= Foo[y]\n\nIn[4]:= "
	assert.Equal(t, want, out.String())
}

func TestWrap(t *testing.T) {
	long := DefaultScript()["Expand[(1 + x)^10]"].Out
	wrapped := wrap(long)

	lines := strings.Split(wrapped, "\n")
	require.Greater(t, len(lines), 1)
	for i, line := range lines {
		if i > 0 {
			assert.True(t, strings.HasPrefix(line, ">   "), line)
		}
		assert.LessOrEqual(t, len(line), lineWidth+len(">   "))
	}
	assert.Equal(t, long, strings.Join(strings.Fields(strings.ReplaceAll(wrapped, ">", "")), " "))

	assert.Equal(t, "Cos[x]", wrap("Cos[x]"))
}

func TestRun_Modes(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run(ModeMute, strings.NewReader(""), &out))
	assert.NotContains(t, out.String(), "In[")

	out.Reset()
	assert.Equal(t, 3, run(ModeCrash, strings.NewReader("FullForm[1]\n"), &out))
	assert.Contains(t, out.String(), "In[1]:= ")
}
