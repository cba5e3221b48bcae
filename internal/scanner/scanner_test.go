package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceIsExclusive(t *testing.T) {
	device := NewDevice(nil)
	ctx := context.Background()

	session, err := device.Open(ctx)
	require.NoError(t, err)

	_, err = device.Open(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	session.Close()
	session.Close()

	again, err := device.Open(ctx)
	require.NoError(t, err)
	again.Close()
}

func TestTextFrameDecoder(t *testing.T) {
	code, err := TextFrameDecoder{}.Decode(context.Background(), []byte(" 690123456789\n"))
	require.NoError(t, err)
	assert.Equal(t, "690123456789", code)

	_, err = TextFrameDecoder{}.Decode(context.Background(), []byte("  "))
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestScriptedDecoder(t *testing.T) {
	d := NewScriptedDecoder("A", "")
	ctx := context.Background()

	code, err := d.Decode(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", code)

	_, err = d.Decode(ctx, nil)
	assert.ErrorIs(t, err, ErrNoMatch)
	_, err = d.Decode(ctx, nil)
	assert.ErrorIs(t, err, ErrNoMatch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewScriptedDecoder("B").Decode(cancelled, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
