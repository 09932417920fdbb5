// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package checkpoint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
	"golang.org/x/crypto/sha3"
)

// Encoded snapshots are laid out as
//
//	magic | version | run id | step | time | boundary | sites
//	per site: schmidt count and values, tensor rank, dims and entries
//	sha3-256 digest of all preceding bytes
//
// with big-endian integers and IEEE 754 bit patterns for floats. The digest
// makes silent corruption of archived runs detectable on load.

const (
	codecVersion = 1
	digestSize   = 32
)

var codecMagic = []byte("MPS1")

// Encode serializes a snapshot into its binary record.
func Encode(snapshot Snapshot) ([]byte, error) {
	psi := snapshot.Psi
	if psi == nil {
		return nil, fmt.Errorf("cannot encode a snapshot without a state")
	}
	buf := make([]byte, 0, encodedSize(psi))
	buf = append(buf, codecMagic...)
	buf = append(buf, codecVersion)
	buf = append(buf, snapshot.RunID[:]...)
	buf = binary.BigEndian.AppendUint64(buf, snapshot.Step)
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(snapshot.Time))
	buf = append(buf, byte(psi.Boundary()))
	buf = binary.BigEndian.AppendUint32(buf, uint32(psi.Len()))
	for i := 0; i < psi.Len(); i++ {
		schmidt := psi.S(i)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(schmidt)))
		for _, v := range schmidt {
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
		}
		site := psi.B(i)
		buf = append(buf, byte(site.Rank()))
		for d := 0; d < site.Rank(); d++ {
			buf = binary.BigEndian.AppendUint32(buf, uint32(site.Dim(d)))
		}
		for _, v := range site.Data() {
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(real(v)))
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(imag(v)))
		}
	}
	digest := sha3.Sum256(buf)
	return append(buf, digest[:]...), nil
}

// Decode reconstructs a snapshot from its binary record. It verifies the
// magic, the format version, and the integrity digest before touching the
// payload.
func Decode(data []byte) (Snapshot, error) {
	if len(data) < len(codecMagic)+1+digestSize {
		return Snapshot{}, fmt.Errorf("snapshot record of %d bytes is too short", len(data))
	}
	if !bytes.Equal(data[:len(codecMagic)], codecMagic) {
		return Snapshot{}, fmt.Errorf("snapshot record has wrong magic %q", data[:len(codecMagic)])
	}
	if version := data[len(codecMagic)]; version != codecVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", version)
	}
	payload, stored := data[:len(data)-digestSize], data[len(data)-digestSize:]
	if digest := sha3.Sum256(payload); !bytes.Equal(digest[:], stored) {
		return Snapshot{}, fmt.Errorf("snapshot record fails its integrity check")
	}

	c := &cursor{buf: payload, off: len(codecMagic) + 1}
	var snapshot Snapshot
	copy(snapshot.RunID[:], c.take(len(uuid.UUID{})))
	snapshot.Step = c.u64()
	snapshot.Time = c.f64()
	var bc mps.BoundaryCondition
	switch raw := c.u8(); raw {
	case 0:
		bc = mps.Finite
	case 1:
		bc = mps.Infinite
	default:
		return Snapshot{}, fmt.Errorf("unknown boundary condition byte %d", raw)
	}
	sites := int(c.u32())
	bs := make([]*tensor.Dense, 0, sites)
	ss := make([][]float64, 0, sites)
	for i := 0; i < sites && c.err == nil; i++ {
		schmidt := make([]float64, c.u32())
		for j := range schmidt {
			schmidt[j] = c.f64()
		}
		dims := make([]int, c.u8())
		for j := range dims {
			dims[j] = int(c.u32())
		}
		size := 1
		for _, d := range dims {
			size *= d
		}
		data := make([]complex128, size)
		for j := range data {
			re := c.f64()
			im := c.f64()
			data[j] = complex(re, im)
		}
		if c.err != nil {
			break
		}
		bs = append(bs, tensor.FromData(data, dims...))
		ss = append(ss, schmidt)
	}
	if c.err != nil {
		return Snapshot{}, c.err
	}
	if c.off != len(payload) {
		return Snapshot{}, fmt.Errorf("snapshot record has %d trailing bytes", len(payload)-c.off)
	}
	psi, err := mps.New(bs, ss, bc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to reassemble state: %w", err)
	}
	snapshot.Psi = psi
	return snapshot, nil
}

func encodedSize(psi *mps.MPS) int {
	size := len(codecMagic) + 1 + len(uuid.UUID{}) + 8 + 8 + 1 + 4 + digestSize
	for i := 0; i < psi.Len(); i++ {
		size += 4 + 8*len(psi.S(i))
		site := psi.B(i)
		size += 1 + 4*site.Rank() + 16*site.Size()
	}
	return size
}

// cursor is a bounds-checked reader over an encoded payload. The first
// out-of-range read latches the error and turns all further reads into
// no-ops.
type cursor struct {
	buf []byte
	off int
	err error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if c.off+n > len(c.buf) {
		c.err = fmt.Errorf("truncated snapshot record at offset %d", c.off)
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8() byte {
	b := c.take(1)
	if c.err != nil {
		return 0
	}
	return b[0]
}

func (c *cursor) u32() uint32 {
	b := c.take(4)
	if c.err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (c *cursor) u64() uint64 {
	b := c.take(8)
	if c.err != nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (c *cursor) f64() float64 {
	return math.Float64frombits(c.u64())
}
