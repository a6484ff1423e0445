package decompress

const (
	rleCopy64        = 0x0
	rleInsertByte18  = 0x4
	rleInsertAt17    = 0x5
	rleInsertBlank17 = 0x6
	rleInsertZero17  = 0x7
	rleCopy1         = 0x8
	rleCopy17        = 0x9
	rleCopy33        = 0xA
	rleCopy49        = 0xB
	rleInsertByte3   = 0xC
	rleInsertAt2     = 0xD
	rleInsertBlank2  = 0xE
	rleInsertZero2   = 0xF
)

// RLE expands a SASYZCRL stream. Each control byte carries a command in its
// high nibble and a length adjustment in its low nibble.
func RLE(dst, src []byte) error {
	s := &state{dst: dst, src: src, codec: "rle"}
	for s.si < len(s.src) {
		ctrl := s.src[s.si]
		s.si++
		cmd := ctrl >> 4
		low := int(ctrl & 0x0F)

		var err error
		switch cmd {
		case rleCopy64:
			var b byte
			if b, err = s.next(); err == nil {
				err = s.literal(low<<8 + int(b) + 64)
			}
		case rleInsertByte18:
			var n, v byte
			if n, err = s.next(); err == nil {
				if v, err = s.next(); err == nil {
					err = s.fill(v, low<<4+int(n)+18)
				}
			}
		case rleInsertAt17, rleInsertBlank17, rleInsertZero17:
			var b byte
			if b, err = s.next(); err == nil {
				err = s.fill(rleFillByte(cmd), low<<8+int(b)+17)
			}
		case rleCopy1:
			err = s.literal(low + 1)
		case rleCopy17:
			err = s.literal(low + 17)
		case rleCopy33:
			err = s.literal(low + 33)
		case rleCopy49:
			err = s.literal(low + 49)
		case rleInsertByte3:
			var v byte
			if v, err = s.next(); err == nil {
				err = s.fill(v, low+3)
			}
		case rleInsertAt2, rleInsertBlank2, rleInsertZero2:
			err = s.fill(rleFillByte(cmd), low+2)
		default:
			s.si--
			err = s.errorf("invalid command %#x", cmd)
		}
		if err != nil {
			return err
		}
	}
	return s.done()
}

func rleFillByte(cmd byte) byte {
	switch cmd {
	case rleInsertAt17, rleInsertAt2:
		return '@'
	case rleInsertBlank17, rleInsertBlank2:
		return ' '
	default:
		return 0
	}
}
