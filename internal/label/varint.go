package label

import "errors"

// ErrTruncated is returned when a varint runs past the end of its buffer.
var ErrTruncated = errors.New("label: truncated varint")

// AppendVarint appends v as 7-bit groups, most significant group first.
// Every byte but the last has its high bit set.
func AppendVarint(dst []byte, v uint32) []byte {
	var buf [5]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7f)
	v >>= 7
	for v != 0 {
		i--
		buf[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	return append(dst, buf[i:]...)
}

// VarintLen reports how many bytes AppendVarint writes for v.
func VarintLen(v uint32) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// DecodeVarint reads a varint written by AppendVarint from the start of src.
// It returns the value and the number of bytes consumed.
func DecodeVarint(src []byte) (uint32, int, error) {
	var v uint32
	for i, c := range src {
		if i >= 5 {
			break
		}
		v = v<<7 | uint32(c&0x7f)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}
