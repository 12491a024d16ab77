package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	idGeneratorMutex        sync.Mutex
	idGeneratorInstantiated bool
	idGenerator             IDGenerator
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewIDGenerator creates a standalone ID generator. Sequential generators
// produce "1", "2", ... and are deterministic. Parallel generators produce
// globally unique xid strings.
func NewIDGenerator(parallel bool) IDGenerator {
	if parallel {
		return parallelIDGenerator{}
	}

	return &sequentialIDGenerator{}
}

// UseSequentialIDGenerator configures the global ID generator to generate IDs
// in sequence.
func UseSequentialIDGenerator() {
	setGlobalIDGenerator(NewIDGenerator(false))
}

// UseParallelIDGenerator configures the global ID generator to generate IDs
// that stay unique across processes. The IDs are not deterministic.
func UseParallelIDGenerator() {
	setGlobalIDGenerator(NewIDGenerator(true))
}

func setGlobalIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGeneratorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
	idGeneratorInstantiated = true
}

// GetIDGenerator returns the global ID generator. A sequential generator is
// used if none has been selected.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if !idGeneratorInstantiated {
		idGenerator = NewIDGenerator(false)
		idGeneratorInstantiated = true
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
