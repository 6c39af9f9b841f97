// Package namepool interns byte-string identifiers into compact 16-bit
// ids (spec.md §4.1). Magic names — the dunder methods the dispatch
// layer and an external compiler both need to agree on — are reserved
// first, in a fixed order, so bytecode can refer to them by enum.
package namepool

import (
	"sync"

	"github.com/embedpy/pycore/internal/fault"
	"github.com/embedpy/pycore/pkg/kind"
)

// Name is a 16-bit index into a Pool. Zero is never a valid interned id.
type Name uint16

// Pool maps byte-sequences to compact ids and back. A Pool is shared by
// every VM in a vm.Group (spec.md §3: "per-VM-group"); because new ids
// are assigned monotonically and existing entries are never mutated or
// evicted, a name's bytes stay valid once returned; Intern (which may
// grow the table), Len, and Lookup's table read take the lock, mirroring
// hive/namecache's per-shard-mutex discipline scaled down to one pool.
type Pool struct {
	mu sync.Mutex

	// names holds each interned name's bytes, one allocation per entry
	// so that lookup's returned slice stays stable across further
	// interns (unlike a single growing arena, which would invalidate
	// earlier views on reallocation).
	names [][]byte
	index map[string]Name

	lastMagic Name
}

// New creates a Pool with the magic names pre-reserved in MagicNames
// order, as spec.md §4.1 requires.
func New() *Pool {
	p := &Pool{
		index: make(map[string]Name, len(MagicNames)*2),
	}
	for _, m := range MagicNames {
		p.mustIntern([]byte(m))
	}
	p.lastMagic = Name(len(p.names))
	return p
}

func (p *Pool) mustIntern(b []byte) Name {
	n, err := p.intern(b)
	if err != nil {
		panic(err)
	}
	return n
}

// Intern maps b to a stable id, assigning a new one on first sight.
func (p *Pool) Intern(b []byte) (Name, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.intern(b)
}

func (p *Pool) intern(b []byte) (Name, error) {
	// map[string]Name lookup keyed by a []byte conversion compiles to a
	// mapaccess without allocating the intermediate string (see
	// hive/namecache/cache.go's doc comment for the same trick).
	if n, ok := p.index[string(b)]; ok {
		return n, nil
	}
	if len(p.names) >= kind.MaxNames-1 {
		return 0, fault.New(fault.KindNamePoolFull, "namepool: exhausted 16-bit id space")
	}
	own := make([]byte, len(b))
	copy(own, b)
	p.names = append(p.names, own)
	id := Name(len(p.names)) // ids are 1-based; 0 stays invalid
	p.index[string(own)] = id
	return id, nil
}

// Lookup returns the bytes for id, a view stable for the Pool's
// lifetime. The bool is false for an unknown or zero id.
func (p *Pool) Lookup(id Name) ([]byte, bool) {
	if id == 0 || int(id) > len(p.names) {
		return nil, false
	}
	p.mu.Lock()
	b := p.names[id-1]
	p.mu.Unlock()
	return b, true
}

// LookupString is a convenience wrapper returning a copy as a string.
func (p *Pool) LookupString(id Name) string {
	b, ok := p.Lookup(id)
	if !ok {
		return ""
	}
	return string(b)
}

// IsMagic reports whether id is one of the reserved magic names.
func (p *Pool) IsMagic(id Name) bool {
	return id != 0 && id <= p.lastMagic
}

// LastMagic returns the highest id reserved for a magic name.
func (p *Pool) LastMagic() Name {
	return p.lastMagic
}

// Len reports how many names are currently interned, magic included.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.names)
}
