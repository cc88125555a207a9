package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator hands out the IDs of recorded rows and progress bars.
type IDGenerator interface {
	Generate() string
}

var idGen struct {
	sync.Mutex
	g IDGenerator
}

// UseSequentialIDGenerator numbers IDs 1, 2, 3, ... so that reruns of the
// same workload produce the same IDs. It is the default.
func UseSequentialIDGenerator() {
	setIDGenerator(new(counterIDGenerator))
}

// UseUniqueIDGenerator generates IDs that are unique across runs, so that
// the recordings of several runs can be merged.
func UseUniqueIDGenerator() {
	setIDGenerator(xidGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGen.Lock()
	defer idGen.Unlock()

	if idGen.g != nil {
		log.Panic("cannot change the id generator after it is used")
	}

	idGen.g = g
}

// GetIDGenerator returns the generator in use. The first call fixes the
// choice.
func GetIDGenerator() IDGenerator {
	idGen.Lock()
	defer idGen.Unlock()

	if idGen.g == nil {
		idGen.g = new(counterIDGenerator)
	}

	return idGen.g
}

type counterIDGenerator struct {
	last atomic.Uint64
}

func (g *counterIDGenerator) Generate() string {
	return strconv.FormatUint(g.last.Add(1), 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
