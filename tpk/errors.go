package tpk

import "fmt"

// StructuralError describes a certificate whose shape violates RFC 9580,
// such as a subkey without any binding signature reaching verification.
type StructuralError string

func (e StructuralError) Error() string {
	return "tpk: " + string(e)
}

var (
	// ErrMissingBindings is returned when a subkey reaches verification
	// without any binding signature.
	ErrMissingBindings = StructuralError("missing subkey bindings")

	// ErrMissingEmbeddedSignature is returned when a binding signature marks
	// a subkey as signing capable but carries no embedded cross-signature.
	ErrMissingEmbeddedSignature = StructuralError("missing embedded signature for signing capable subkey")
)

// BindingRole identifies which binding check failed verification.
type BindingRole string

const (
	// BindingIdentity covers self-signatures in the details bundle.
	BindingIdentity BindingRole = "identity"
	// BindingSubkey covers forward subkey binding and revocation signatures
	// made by the primary key.
	BindingSubkey BindingRole = "subkey"
	// BindingPrimary covers the embedded reverse signature made by a
	// signing-capable subkey over the primary key.
	BindingPrimary BindingRole = "primary"
)

// SignatureError reports a failed binding signature verification,
// identifying the role of the failed check and the key it covers.
type SignatureError struct {
	Role  BindingRole
	KeyID uint64
	Cause error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("tpk: %s binding verification failed for key %X: %v", e.Role, e.KeyID, e.Cause)
}

// Unwrap returns the underlying verification failure.
func (e *SignatureError) Unwrap() error {
	return e.Cause
}
