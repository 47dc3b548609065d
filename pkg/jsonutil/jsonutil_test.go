package jsonutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestMarshalUnmarshal(t *testing.T) {
	t.Parallel()

	in := sample{Name: "scan", Count: 3, Tags: []string{"a"}}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMarshalIndent(t *testing.T) {
	t.Parallel()

	data, err := MarshalIndent(sample{Name: "x"}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"name\"")
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid([]byte(`{"a":1}`)))
	assert.False(t, Valid([]byte(`{"a":`)))
}

func TestEncoder_OneValuePerLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	enc := NewStreamEncoder(&buf)
	require.NoError(t, enc.Encode(sample{Name: "a"}))
	require.NoError(t, enc.Encode(sample{Name: "b"}))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, Valid(lines[0]))
	assert.True(t, Valid(lines[1]))
}
