package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorpusErrorContext(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := NewCorpusError("decode", cause).WithPath("faq/general.json")

	assert.Contains(t, err.Error(), "decode")
	assert.Contains(t, err.Error(), "faq/general.json")
	assert.ErrorIs(t, err, cause)

	var ce *CorpusError
	require.ErrorAs(t, error(err), &ce)
	assert.Equal(t, ErrorTypeCorpus, ce.Type)
	assert.False(t, ce.Timestamp.IsZero())
}

func TestCorpusErrorQuestionContext(t *testing.T) {
	err := NewCorpusError("validate", stderrors.New("empty question text")).WithQuestion("faq-7")
	assert.Contains(t, err.Error(), "faq-7")
}

func TestSearchErrorWrapsQuery(t *testing.T) {
	cause := stderrors.New("index unavailable")
	err := NewSearchError("tutoring fees", cause)

	assert.Contains(t, err.Error(), `"tutoring fees"`)
	assert.ErrorIs(t, err, cause)
}

func TestConfigErrorWrapsField(t *testing.T) {
	cause := stderrors.New("must be between 0 and 1")
	err := NewConfigError("threshold", "1.5", cause)

	assert.Contains(t, err.Error(), "threshold")
	assert.Contains(t, err.Error(), "1.5")
	assert.ErrorIs(t, err, cause)
}

func TestMultiErrorAggregation(t *testing.T) {
	assert.Nil(t, NewMultiError(nil))
	assert.Nil(t, NewMultiError([]error{nil, nil}))

	one := NewMultiError([]error{stderrors.New("blank id")})
	require.NotNil(t, one)
	assert.Equal(t, "blank id", one.Error())

	pathErr := &fs.PathError{Op: "open", Path: "missing.json", Err: fs.ErrNotExist}
	many := NewMultiError([]error{stderrors.New("blank id"), pathErr})
	require.NotNil(t, many)
	assert.Contains(t, many.Error(), "2 errors")
	assert.ErrorIs(t, many, fs.ErrNotExist)
}
