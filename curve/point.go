package curve

import (
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"
	"github.com/pkg/errors"
)

// Point is either an affine solution (x, y) of the curve equation or the
// point at infinity. The zero value is the point at infinity.
type Point struct {
	x, y   int64
	affine bool
}

// Infinity returns the group identity.
func Infinity() Point { return Point{} }

// NewPoint returns the affine point (x, y). Coordinates are taken as given;
// use Params.Contains to check membership.
func NewPoint(x, y int64) Point { return Point{x: x, y: y, affine: true} }

// IsInfinity reports whether p is the identity.
func (p Point) IsInfinity() bool { return !p.affine }

// Affine returns the coordinates of p; ok is false for the identity.
func (p Point) Affine() (x, y int64, ok bool) {
	if !p.affine {
		return 0, 0, false
	}
	return p.x, p.y, true
}

// X returns the x coordinate. It panics on the identity.
func (p Point) X() int64 {
	if !p.affine {
		panic("curve: X of point at infinity")
	}
	return p.x
}

// Y returns the y coordinate. It panics on the identity.
func (p Point) Y() int64 {
	if !p.affine {
		panic("curve: Y of point at infinity")
	}
	return p.y
}

// Equal reports whether p and q are the same group element.
func (p Point) Equal(q Point) bool {
	if !p.affine || !q.affine {
		return p.affine == q.affine
	}
	return p.x == q.x && p.y == q.y
}

// siphash keys; fixed so hashes are stable across runs
const (
	hashK0 = 0x0706050403020100
	hashK1 = 0x0f0e0d0c0b0a0908
)

// Hash returns a 64-bit hash of p. Every identity hashes to the same value.
func (p Point) Hash() uint64 {
	var buf [17]byte
	if p.affine {
		buf[0] = 1
		binary.BigEndian.PutUint64(buf[1:9], uint64(p.x))
		binary.BigEndian.PutUint64(buf[9:], uint64(p.y))
	}
	return siphash.Hash(hashK0, hashK1, buf[:])
}

func (p Point) String() string {
	if !p.affine {
		return "infinity"
	}
	return fmt.Sprintf("(%d, %d)", p.x, p.y)
}

// MarshalText implements encoding.TextMarshaler.
func (p Point) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for the String format.
func (p *Point) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "infinity" {
		*p = Infinity()
		return nil
	}
	var x, y int64
	if _, err := fmt.Sscanf(s, "(%d, %d)", &x, &y); err != nil {
		return errors.Wrapf(err, "parse point %q", s)
	}
	*p = NewPoint(x, y)
	return nil
}
