// Package storage provides the byte-addressable buffer that backs the TLB
// cache and the physical memory devices.
package storage

import (
	"errors"
	"fmt"
)

// WordSize is the number of bytes in a word.
const WordSize = 4

var (
	// ErrAddressOutOfRange is returned when an access falls outside of the
	// storage.
	ErrAddressOutOfRange = errors.New(
		"accessing physical address beyond the storage capacity")

	// ErrNilStorage is returned when accessing a storage that does not
	// exist.
	ErrNilStorage = errors.New("storage is nil")

	// ErrWordAccess is returned when one of the bytes of a word cannot be
	// accessed.
	ErrWordAccess = errors.New("word access failed")
)

// A Storage is a fixed-size random access buffer. All the bytes are zero
// when the storage is created.
//
// A Storage does not lock. The owner is responsible for serializing
// read-modify-write sequences.
type Storage struct {
	capacity uint64
	data     []byte
}

// NewStorage creates a storage object with the specified capacity
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		capacity: capacity,
		data:     make([]byte, capacity),
	}
}

// Capacity returns the number of bytes in the storage.
func (s *Storage) Capacity() uint64 {
	if s == nil {
		return 0
	}

	return s.capacity
}

func (s *Storage) mustBeAccessible(addr uint64) error {
	if s == nil {
		return ErrNilStorage
	}

	if addr >= s.capacity {
		return fmt.Errorf("%w: address 0x%x, capacity 0x%x",
			ErrAddressOutOfRange, addr, s.capacity)
	}

	return nil
}

// Read returns the byte at addr.
func (s *Storage) Read(addr uint64) (byte, error) {
	if err := s.mustBeAccessible(addr); err != nil {
		return 0, err
	}

	return s.data[addr], nil
}

// Write stores v at addr.
func (s *Storage) Write(addr uint64, v byte) error {
	if err := s.mustBeAccessible(addr); err != nil {
		return err
	}

	s.data[addr] = v

	return nil
}

// ReadWord composes the 4 bytes starting at addr into a word. The byte at the
// lowest address is the most significant one.
func (s *Storage) ReadWord(addr uint64) (uint32, error) {
	var word uint32

	for i := uint64(0); i < WordSize; i++ {
		b, err := s.Read(addr + i)
		if err != nil {
			return 0, fmt.Errorf("%w at 0x%x: %w", ErrWordAccess, addr, err)
		}

		word = word<<8 | uint32(b)
	}

	return word, nil
}

// WriteWord stores word into the 4 bytes starting at addr, most significant
// byte first. Nothing is written if any of the 4 bytes is out of range.
func (s *Storage) WriteWord(addr uint64, word uint32) error {
	if err := s.mustBeAccessible(addr + WordSize - 1); err != nil {
		return fmt.Errorf("%w at 0x%x: %w", ErrWordAccess, addr, err)
	}

	for i := int(WordSize - 1); i >= 0; i-- {
		if err := s.Write(addr+uint64(i), byte(word)); err != nil {
			return fmt.Errorf("%w at 0x%x: %w", ErrWordAccess, addr, err)
		}

		word >>= 8
	}

	return nil
}
