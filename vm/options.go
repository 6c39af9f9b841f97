package vm

import (
	"github.com/BurntSushi/toml"

	"github.com/embedpy/pycore/internal/fault"
	"github.com/embedpy/pycore/pkg/kind"
)

// Options configures a VM at construction time. The zero Options is
// invalid; use NewOptions to get the documented defaults, or LoadOptions
// to read them from a TOML file (the shape cmd/pycore's config flag
// accepts).
type Options struct {
	StackSize   int
	GCThreshold int64
	AutoGC      bool
	Argv        []string
}

// Option mutates an Options in place; the functional-options pattern
// used throughout the pack's CLI entry points (cmd/hivectl/root.go's
// flag set plays the same role for the command tree).
type Option func(*Options)

// NewOptions returns the documented defaults: spec.md §4.5's 16384-cell
// stack, spec.md §4.2's 16 KiB GC threshold, auto-GC on, empty argv.
func NewOptions(opts ...Option) Options {
	o := Options{
		StackSize:   kind.VMStackSize,
		GCThreshold: kind.GCMinThreshold,
		AutoGC:      true,
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// WithStackSize overrides the value stack's capacity.
func WithStackSize(n int) Option {
	return func(o *Options) { o.StackSize = n }
}

// WithGCThreshold sets Options.GCThreshold. New does not pass this value
// to the heap: every VM's heap starts at kind.GCMinThreshold and adapts
// from there.
func WithGCThreshold(n int64) Option {
	return func(o *Options) { o.GCThreshold = n }
}

// WithAutoGC toggles automatic collection (spec.md §4.2 "A debug mode
// may disable auto-GC for determinism").
func WithAutoGC(enabled bool) Option {
	return func(o *Options) { o.AutoGC = enabled }
}

// WithArgv sets sys.argv (spec.md §4.5).
func WithArgv(argv []string) Option {
	return func(o *Options) { o.Argv = argv }
}

// fileOptions is the TOML document shape LoadOptions reads; field names
// are lowercase on disk, matching cmd/hivectl's flag naming.
type fileOptions struct {
	StackSize   int      `toml:"stack_size"`
	GCThreshold int64    `toml:"gc_threshold"`
	AutoGC      *bool    `toml:"auto_gc"`
	Argv        []string `toml:"argv"`
}

// LoadOptions reads a TOML config file into Options, starting from
// NewOptions' defaults and overriding only the keys present in the
// file. Grounded on the ambient-stack choice to use BurntSushi/toml
// (the TOML library the pack's tutu-network/tutu member depends on) for
// host-supplied VM configuration rather than flags alone.
func LoadOptions(path string) (Options, error) {
	var fo fileOptions
	if _, err := toml.DecodeFile(path, &fo); err != nil {
		return Options{}, fault.Wrap(fault.KindConfig, "vm: failed to load options from "+path, err)
	}

	o := NewOptions()
	if fo.StackSize > 0 {
		o.StackSize = fo.StackSize
	}
	if fo.GCThreshold > 0 {
		o.GCThreshold = fo.GCThreshold
	}
	if fo.AutoGC != nil {
		o.AutoGC = *fo.AutoGC
	}
	if fo.Argv != nil {
		o.Argv = fo.Argv
	}
	return o, validate(o)
}

func validate(o Options) error {
	if o.StackSize <= 0 {
		return fault.New(fault.KindConfig, "vm: StackSize must be positive")
	}
	if o.GCThreshold <= 0 {
		return fault.New(fault.KindConfig, "vm: GCThreshold must be positive")
	}
	return nil
}
