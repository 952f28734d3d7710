package utils

import "strconv"

// ReverseOctets returns the octets in reverse order.
func ReverseOctets(o [4]int) [4]int {
	return [4]int{o[3], o[2], o[1], o[0]}
}

// PackOctets encodes an IPv4 address as a 32-bit big-endian value.
func PackOctets(o [4]int) uint32 {
	return uint32(o[0])<<24 | uint32(o[1])<<16 | uint32(o[2])<<8 | uint32(o[3])
}

// DottedQuad formats four octets as a.b.c.d.
func DottedQuad(o [4]int) string {
	b := make([]byte, 0, 15)
	for i, v := range o {
		if i > 0 {
			b = append(b, '.')
		}
		b = strconv.AppendInt(b, int64(v), 10)
	}
	return string(b)
}
