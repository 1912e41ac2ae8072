package sane

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// fixedScale is the SANE fixed-point scale factor: a Word interpreted as a
// real number holds that number multiplied by fixedScale.
const fixedScale = 1 << 16

// Word is interpreted as a signed int32, a bit-vector, or a fixed-precision
// real (value/65536) depending on context.
type Word uint32

func (w Word) Int() int32 { return int32(w) }

func WordFromInt(v int32) Word { return Word(uint32(v)) }

func (w Word) Fixed() float64 { return float64(int32(w)) / fixedScale }

func WordFromFixed(v float64) Word { return Word(uint32(int32(v * fixedScale))) }

func readWord(r io.Reader) (Word, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read word: %w", err)
	}
	return Word(binary.BigEndian.Uint32(buf[:])), nil
}

func writeWord(w io.Writer, v Word) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write word: %w", err)
	}
	return nil
}

func readBool(r io.Reader) (bool, error) {
	v, err := readWord(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func writeBool(w io.Writer, b bool) error {
	if b {
		return writeWord(w, 1)
	}
	return writeWord(w, 0)
}

// readString decodes a length-prefixed ISO-8859-1 string. A length of 0 means
// the string is empty (no trailing NUL on the wire); any other length
// includes the trailing NUL, which is read and discarded.
func readString(r io.Reader) (string, error) {
	n, err := readWord(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	runes := make([]rune, len(buf)-1)
	for i, c := range buf[:len(buf)-1] {
		runes[i] = rune(c)
	}
	return string(runes), nil
}

// writeString encodes s as a length-prefixed ISO-8859-1 string, writing the
// trailing NUL that readString expects. The empty string writes a bare
// length-0 word. Characters outside ISO-8859-1 are written as '?'.
func writeString(w io.Writer, s string) error {
	if s == "" {
		return writeWord(w, 0)
	}
	b := make([]byte, 0, len(s))
	for _, c := range s {
		if c > 0xFF {
			c = '?'
		}
		b = append(b, byte(c))
	}
	if err := writeWord(w, Word(len(b)+1)); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write string: %w", err)
	}
	if _, err := w.Write([]byte{0}); err != nil {
		return fmt.Errorf("write string terminator: %w", err)
	}
	return nil
}

func readPointer(r io.Reader) (bool, error) {
	v, err := readWord(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func writePointer(w io.Writer, present bool) error {
	if present {
		return writeWord(w, 1)
	}
	return writeWord(w, 0)
}

func readWords(r io.Reader, n int) ([]Word, error) {
	out := make([]Word, n)
	for i := range out {
		v, err := readWord(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeWords(w io.Writer, vs []Word) error {
	for _, v := range vs {
		if err := writeWord(w, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeWords(vs []Word) []byte {
	var buf bytes.Buffer
	buf.Grow(4 * len(vs))
	_ = writeWords(&buf, vs)
	return buf.Bytes()
}
