package sastest

// runLength returns how many times src[i] repeats starting at i.
func runLength(src []byte, i int) int {
	n := 1
	for i+n < len(src) && src[i+n] == src[i] {
		n++
	}
	return n
}

// EncodeRLE compresses src as a SASYZCRL stream.
func EncodeRLE(src []byte) []byte {
	var out, lit []byte
	flush := func() {
		for len(lit) > 0 {
			n := len(lit)
			switch {
			case n <= 16:
				out = append(out, 0x80|byte(n-1))
			case n <= 32:
				out = append(out, 0x90|byte(n-17))
			case n <= 48:
				out = append(out, 0xA0|byte(n-33))
			case n < 64:
				out = append(out, 0xB0|byte(n-49))
			default:
				n = min(n, 64+0xFFF)
				m := n - 64
				out = append(out, byte(m>>8), byte(m))
			}
			out = append(out, lit[:n]...)
			lit = lit[n:]
		}
	}

	for i := 0; i < len(src); {
		b := src[i]
		r := runLength(src, i)
		special := b == ' ' || b == 0 || b == '@'
		switch {
		case special && r >= 2:
			flush()
			var short, long byte
			switch b {
			case ' ':
				short, long = 0xE0, 0x60
			case 0:
				short, long = 0xF0, 0x70
			default:
				short, long = 0xD0, 0x50
			}
			if r <= 17 {
				out = append(out, short|byte(r-2))
			} else {
				r = min(r, 17+0xFFF)
				m := r - 17
				out = append(out, long|byte(m>>8), byte(m))
			}
			i += r
		case r >= 3:
			flush()
			if r <= 18 {
				out = append(out, 0xC0|byte(r-3), b)
			} else {
				r = min(r, 18+15*16+255)
				m := r - 18
				low := min(m>>4, 15)
				out = append(out, 0x40|byte(low), byte(m-low*16), b)
			}
			i += r
		default:
			lit = append(lit, b)
			i++
		}
	}
	flush()
	return out
}

// EncodeRDC compresses src as a SASYZCR2 stream using literals, runs and
// back references.
func EncodeRDC(src []byte) []byte {
	var out []byte
	ctrlPos, nitems := 0, 16
	var ctrl uint16
	item := func(isCmd bool, b ...byte) {
		if nitems == 16 {
			if len(out) > 0 {
				out[ctrlPos] = byte(ctrl >> 8)
				out[ctrlPos+1] = byte(ctrl)
			}
			ctrlPos = len(out)
			out = append(out, 0, 0)
			ctrl, nitems = 0, 0
		}
		if isCmd {
			ctrl |= 0x8000 >> nitems
		}
		nitems++
		out = append(out, b...)
	}

	for i := 0; i < len(src); {
		r := runLength(src, i)
		dist, length := longestMatch(src, i)
		switch {
		case r >= 19:
			r = min(r, 19+0xFFF)
			m := r - 19
			item(true, 0x10|byte(m&0x0F), byte(m>>4), src[i])
			i += r
		case length >= 16 && length >= r:
			length = min(length, 16+255)
			d := dist - 3
			item(true, 0x20|byte(d&0x0F), byte(d>>4), byte(length-16))
			i += length
		case r >= 3 && r >= length:
			item(true, byte(r-3), src[i])
			i += r
		case length >= 3:
			d := dist - 3
			item(true, byte(length)<<4|byte(d&0x0F), byte(d>>4))
			i += length
		default:
			item(false, src[i])
			i++
		}
	}
	if len(out) > 0 {
		out[ctrlPos] = byte(ctrl >> 8)
		out[ctrlPos+1] = byte(ctrl)
	}
	return out
}

// longestMatch finds the longest earlier occurrence of src[i:] that a back
// reference can reach.
func longestMatch(src []byte, i int) (dist, length int) {
	const maxDist = 3 + 15 + 255<<4
	for d := 3; d <= min(i, maxDist); d++ {
		n := 0
		for i+n < len(src) && n < 16+255 && src[i+n] == src[i+n-d] {
			n++
		}
		if n > length {
			dist, length = d, n
		}
	}
	return dist, length
}
