package storage

import (
	"fmt"
	"io"
)

// Dump lists every non-zero byte of the storage.
func (s *Storage) Dump(w io.Writer, title string) error {
	if s == nil {
		return ErrNilStorage
	}

	fmt.Fprintf(w, "===== %s DUMP =====\n", title)

	for addr, b := range s.data {
		if b == 0 {
			continue
		}

		fmt.Fprintf(w, "BYTE %08x: %d\n", addr, b)
	}

	_, err := fmt.Fprintf(w, "===== %s END-DUMP =====\n", title)

	return err
}

// BinDump lists the bit pattern of every word whose leading byte is not zero.
func (s *Storage) BinDump(w io.Writer, title string) error {
	if s == nil {
		return ErrNilStorage
	}

	fmt.Fprintf(w, "*** %s BIN DUMP:\n", title)

	for addr := uint64(0); addr+WordSize <= s.capacity; addr += WordSize {
		if s.data[addr] == 0 {
			continue
		}

		word, err := s.ReadWord(addr)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "   (%d) %08x: (%d) %032b\n", addr, addr, word, word)
	}

	_, err := fmt.Fprintf(w, "*** %s END-DUMP\n", title)

	return err
}
