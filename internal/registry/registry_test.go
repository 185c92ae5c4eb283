package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closer struct {
	name string
	log  *[]string
	err  error
}

func (c *closer) Close() error {
	*c.log = append(*c.log, c.name)
	return c.err
}

func TestGet_BuildsOnce(t *testing.T) {
	r := New()
	calls := 0
	build := func() (*int, error) {
		calls++
		n := 42
		return &n, nil
	}

	a, err := Get(r, "answer", build)
	require.NoError(t, err)
	b, err := Get(r, "answer", build)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"answer"}, r.Keys())
}

func TestGet_FailedBuildRetries(t *testing.T) {
	r := New()
	boom := errors.New("dial failed")

	_, err := Get(r, "db", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Empty(t, r.Keys())

	v, err := Get(r, "db", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestGet_TypeMismatch(t *testing.T) {
	r := New()
	_, err := Get(r, "k", func() (string, error) { return "s", nil })
	require.NoError(t, err)

	_, err = Get(r, "k", func() (int, error) { return 1, nil })
	assert.Error(t, err)
}

func TestGet_EmptyKey(t *testing.T) {
	_, err := Get(New(), "", func() (int, error) { return 1, nil })
	assert.Error(t, err)
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet(New(), "x", func() (int, error) { return 0, errors.New("nope") })
	})
}

func TestClose_ReverseOrderAndErrors(t *testing.T) {
	r := New()
	var log []string
	boom := errors.New("close failed")

	MustGet(r, "first", func() (*closer, error) { return &closer{name: "first", log: &log}, nil })
	MustGet(r, "plain", func() (int, error) { return 7, nil })
	MustGet(r, "second", func() (*closer, error) { return &closer{name: "second", log: &log, err: boom}, nil })

	err := r.Close()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"second", "first"}, log)
	assert.Empty(t, r.Keys())

	_, err = Get(r, "first", func() (int, error) { return 1, nil })
	assert.Error(t, err)
}
