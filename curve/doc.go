// Package curve implements the group of points of a short Weierstrass curve
// y² = x³ + ax + b over the integers modulo a small prime m, using native
// int64 arithmetic.
//
// Points are values: Infinity() (also the zero Point) is the identity and
// NewPoint builds affine points. Params carries (a, b, m) and implements the
// group law (Add, Double, Negate) and double-and-add scalar multiplication.
// Every operation that divides or multiplies returns an error instead of a
// meaningless value when the inputs violate its preconditions; see the
// modarith package for the underlying error values.
//
// Secp256k1Group and Ed25519Group expose two production curves behind the
// same Group interface so the group laws can be checked on them too.
package curve
