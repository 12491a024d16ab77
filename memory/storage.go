package memory

import (
	"errors"
	"fmt"
	"sync"
)

// Common capacity units.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// ErrOutOfRange is returned when an access falls outside the storage capacity.
var ErrOutOfRange = errors.New("accessing address beyond the storage capacity")

// A Storage keeps the bytes of the emulated address space that the DMA
// controller reads from and writes to.
//
// The storage manages the data in units, similar to pages. Units that are
// never touched by Read and Write are not allocated. A Storage is safe for
// concurrent use.
type Storage struct {
	lock     sync.Mutex
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity
func NewStorage(capacity uint64) *Storage {
	return NewStorageWithUnitSize(capacity, 4*KB)
}

// NewStorageWithUnitSize creates a storage whose pages are unitSize bytes.
func NewStorageWithUnitSize(capacity, unitSize uint64) *Storage {
	if unitSize == 0 {
		panic("unit size must not be zero")
	}

	return &Storage{
		unitSize: unitSize,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the number of addressable bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) mustBeInRange(address, length uint64) error {
	if address >= s.capacity || length > s.capacity-address {
		return fmt.Errorf("%w: [0x%x, 0x%x) capacity 0x%x",
			ErrOutOfRange, address, address+length, s.capacity)
	}

	return nil
}

// unit retrieves a storage unit, creating it on first touch.
func (s *Storage) unit(address uint64) []byte {
	baseAddr, _ := s.parseAddress(address)

	u, ok := s.data[baseAddr]
	if !ok {
		u = make([]byte, s.unitSize)
		s.data[baseAddr] = u
	}

	return u
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns a copy of length bytes starting at address.
func (s *Storage) Read(address, length uint64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}

	if err := s.mustBeInRange(address, length); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		u := s.unit(currAddr)
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToRead := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		copy(res[dataOffset:dataOffset+lenToRead],
			u[inUnitAddr:inUnitAddr+lenToRead])
		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if length == 0 {
		return nil
	}

	if err := s.mustBeInRange(address, length); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		u := s.unit(currAddr)
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToWrite := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		copy(u[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])
		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}

// NumAllocatedUnits returns how many units have been touched.
func (s *Storage) NumAllocatedUnits() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.data)
}
