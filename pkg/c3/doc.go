// Package c3 implements the C3 linearization used to order a class and its
// ancestors for method resolution.
//
// # Algorithm
//
// For a class C with declared bases B1..Bn:
//
//	L(C) = [C] + merge(L(B1), ..., L(Bn), [B1, ..., Bn])
//
// The merge repeatedly takes the first head, scanning the inputs left to
// right, that does not appear in the tail of any input, appends it to the
// output and removes it from the head of every input starting with it. If
// every remaining head appears in some tail, the hierarchy has no consistent
// order and [Linearize] returns an [*InconsistentError].
//
// Appending the local precedence list [B1..Bn] as the last input keeps the
// declared base order. Taking only heads that no tail still waits on keeps the
// order monotonic: if X precedes Y in L(B), X precedes Y in L(C) for every
// subclass C of B.
//
// # Diamonds
//
//	A
//	B(A)  C(A)
//	D(B, C)
//
// L(D) = [D B C A]. The shared ancestor appears once, after both paths to it.
// Compare [DepthFirst], which gives [D B A C] and would let A's members shadow
// C's overrides.
//
// # Sources
//
// Linearize does not recurse on its own: it asks a [Source] for the bases'
// linearizations. Package cache provides the concurrent, memoizing Source used
// by sessions. [Compute] is a self-contained convenience built on a local map.
//
// # Determinism
//
// All inputs are ordered slices and the merge scan order is fixed, so a given
// graph always produces the same linearization.
package c3
