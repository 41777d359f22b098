package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCodeOfAppError(t *testing.T) {
	base := ConfigInvalid("DEPENDENT_WINDOWS is empty")
	wrapped := Wrap(base, "configuration validation failed")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, "configuration validation failed: DEPENDENT_WINDOWS is empty", wrapped.Error())
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	wrapped := Wrapf(stderrors.New("boom"), "loading %s", "graph.graphml")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "loading graph.graphml: boom", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCode(t *testing.T) {
	cause := stderrors.New("cycle through 12")
	err := WithCode(CodeIntegrityError, cause)

	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeIntegrityError, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "UNKNOWN", GetCode(cause))
}
