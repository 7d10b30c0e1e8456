package xset_environment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	assert.Equal(t, []string{"-display", ":0.0", "dpms", "force", "on"}, Args(":0.0", true))
	assert.Equal(t, []string{"-display", ":0.0", "dpms", "force", "off"}, Args(":0.0", false))
}

func TestSetActive(t *testing.T) {
	env := New(":0.0", zerolog.Nop())

	var gotName string
	var gotArgs []string
	env.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("\n"), nil
	}

	require.NoError(t, env.SetActive(context.Background(), false))
	assert.Equal(t, "xset", gotName)
	assert.Equal(t, []string{"-display", ":0.0", "dpms", "force", "off"}, gotArgs)
}

func TestSetActive_Error(t *testing.T) {
	env := New(":0.0", zerolog.Nop())
	env.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exec: \"xset\": executable file not found in $PATH")
	}

	assert.Error(t, env.SetActive(context.Background(), true))
}
