// Package resolve finds which class supplies a member.
//
// Resolution follows the linearization: the classes of L(C) are searched
// most-derived first and the first class whose member table defines the
// name wins. Given
//
//	A        defines m
//	B(A)
//	C(A)     overrides m
//	D(B, C)
//
// L(D) is [D B C A], so m on D resolves to C even though B, the first
// declared base, inherits A's m.
//
// Member tables are supplied by the caller; this package never inspects
// definitions. A class whose hierarchy cannot be linearized cannot resolve
// anything: the linearization error is returned unchanged rather than
// falling back to some other order.
//
// [Next] implements cooperative super calls (continue the search after a
// given class) and [Definers] lists the whole override chain.
package resolve
