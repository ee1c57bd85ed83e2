package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	err := NotFound("audio file", "abc")
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "audio file abc: not found", err.Error())

	wrapped := fmt.Errorf("load job: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, "write chunk")
	assert.Equal(t, "write chunk: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestFieldHelpers(t *testing.T) {
	assert.ErrorIs(t, RequiredField("uploadId"), ErrInvalidInput)
	assert.ErrorIs(t, InvalidField("chunkIndex", "out of range"), ErrInvalidInput)
	assert.Contains(t, InvalidField("chunkIndex", "out of range").Error(), "chunkIndex is invalid")
}
