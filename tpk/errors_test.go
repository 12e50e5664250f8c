package tpk_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/effective-security/xpgp/tpk"
)

func TestStructuralError(t *testing.T) {
	assert.EqualError(t, tpk.ErrMissingBindings, "tpk: missing subkey bindings")
	assert.EqualError(t, tpk.ErrMissingEmbeddedSignature,
		"tpk: missing embedded signature for signing capable subkey")

	wrapped := errors.WithMessage(tpk.ErrMissingBindings, "subkey 0")
	assert.True(t, errors.Is(wrapped, tpk.ErrMissingBindings))
}

func TestSignatureError(t *testing.T) {
	err := &tpk.SignatureError{
		Role:  tpk.BindingSubkey,
		KeyID: 0xDEADBEEF,
		Cause: errors.New("RSA verification failure"),
	}
	assert.Contains(t, err.Error(), "subkey binding verification failed")
	assert.Contains(t, err.Error(), "DEADBEEF")
	assert.EqualError(t, errors.Unwrap(err), "RSA verification failure")

	var target *tpk.SignatureError
	assert.True(t, errors.As(errors.WithMessage(err, "ctx"), &target))
	assert.Equal(t, tpk.BindingSubkey, target.Role)
}
