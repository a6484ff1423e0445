package decompress

// RDC expands a SASYZCR2 stream. A 16-bit control word announces, most
// significant bit first, whether each of the next sixteen items is a literal
// byte or a command.
func RDC(dst, src []byte) error {
	s := &state{dst: dst, src: src, codec: "rdc"}
	var ctrlBits, ctrlMask uint16
	for s.si < len(s.src) {
		ctrlMask >>= 1
		if ctrlMask == 0 {
			if len(s.src)-s.si < 2 {
				return s.errorf("truncated control word")
			}
			ctrlBits = uint16(s.src[s.si])<<8 | uint16(s.src[s.si+1])
			s.si += 2
			ctrlMask = 0x8000
		}

		if ctrlBits&ctrlMask == 0 {
			if err := s.literal(1); err != nil {
				return err
			}
			continue
		}

		val, err := s.next()
		if err != nil {
			return err
		}
		cmd := int(val >> 4)
		cnt := int(val & 0x0F)
		switch {
		case cmd == 0:
			// short run
			var b byte
			if b, err = s.next(); err == nil {
				err = s.fill(b, cnt+3)
			}
		case cmd == 1:
			// long run
			var hi, b byte
			if hi, err = s.next(); err == nil {
				if b, err = s.next(); err == nil {
					err = s.fill(b, cnt+int(hi)<<4+19)
				}
			}
		case cmd == 2:
			// long pattern
			var hi, n byte
			if hi, err = s.next(); err == nil {
				if n, err = s.next(); err == nil {
					err = s.back(cnt+3+int(hi)<<4, int(n)+16)
				}
			}
		default:
			// short pattern, cmd is the length
			var hi byte
			if hi, err = s.next(); err == nil {
				err = s.back(cnt+3+int(hi)<<4, cmd)
			}
		}
		if err != nil {
			return err
		}
	}
	return s.done()
}
