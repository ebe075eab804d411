package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderWrapsOriginalError(t *testing.T) {
	base := stderrors.New("bank out of range")

	err := New(base).
		Component("scene").
		Category(CategoryValidation).
		Context("bank", 20000).
		Build()

	require.Error(t, err)
	assert.Equal(t, "bank out of range", err.Error())
	assert.True(t, stderrors.Is(err, base))

	var we *Error
	require.True(t, As(err, &we))
	assert.Equal(t, "scene", we.Component)
	assert.Equal(t, CategoryValidation, we.Category)
	assert.Equal(t, 20000, we.GetContext()["bank"])
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf("channel %d has no meter", 7).
		Component("meter").
		Category(CategoryMetering).
		Build()

	assert.Equal(t, "channel 7 has no meter", err.Error())
}

func TestIsMatchesByCategory(t *testing.T) {
	a := Newf("one").Category(CategoryTimeline).Build()
	b := Newf("two").Category(CategoryTimeline).Build()
	c := Newf("three").Category(CategoryMIDI).Build()

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestNilErrorYieldsPlaceholder(t *testing.T) {
	err := New(nil).Component("conf").Build()
	require.Error(t, err)
	assert.Equal(t, "unknown error", err.Error())
}
