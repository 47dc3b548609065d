package iohelper

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBody_NilReader(t *testing.T) {
	body, err := ReadBody(nil, DefaultMaxBodySize)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestReadBody_RespectsLimit(t *testing.T) {
	body, err := ReadBody(strings.NewReader(strings.Repeat("x", 1000)), 100)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}

func TestReadBodyStrict(t *testing.T) {
	body, err := ReadBodyStrict(strings.NewReader("0123456789"), 10)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(body))

	_, err = ReadBodyStrict(strings.NewReader("0123456789x"), 10)
	assert.ErrorIs(t, err, ErrTooLarge)
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func TestDrainAndClose(t *testing.T) {
	assert.NoError(t, DrainAndClose(nil))

	r := strings.NewReader("leftover")
	tc := &trackingCloser{Reader: r}
	assert.NoError(t, DrainAndClose(tc))
	assert.True(t, tc.closed)
	assert.Zero(t, r.Len())
}
