// Package fault carries host-level failures the embedding application
// cannot recover from in-language: out-of-memory, stack overflow, and
// configuration limits reached at startup. Python-level exceptions are
// runtime values (see the builtins package) and are not Faults.
package fault

// Kind classifies a Fault so callers can branch on category rather than
// string-matching the message.
type Kind int

const (
	KindOOM           Kind = iota // allocator exhausted the underlying memory
	KindStackOverflow             // value stack exceeded kind.VMStackSize
	KindNamePoolFull              // namepool exhausted the 16-bit id space
	KindConfig                    // bad vm.Options (e.g. zero stack size)
	KindInternal                  // invariant violation caught by internal/integrity
)

func (k Kind) String() string {
	switch k {
	case KindOOM:
		return "out-of-memory"
	case KindStackOverflow:
		return "stack-overflow"
	case KindNamePoolFull:
		return "name-pool-full"
	case KindConfig:
		return "config"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Fault is a host-level, generally non-recoverable failure.
type Fault struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Fault) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Err != nil {
		return f.Msg + ": " + f.Err.Error()
	}
	return f.Msg
}

func (f *Fault) Unwrap() error { return f.Err }

// New builds a Fault of the given kind with a formatted message.
func New(k Kind, msg string) *Fault {
	return &Fault{Kind: k, Msg: msg}
}

// Wrap builds a Fault of the given kind wrapping an underlying cause.
func Wrap(k Kind, msg string, err error) *Fault {
	return &Fault{Kind: k, Msg: msg, Err: err}
}

// Resumable reports whether a Fault of this kind leaves the VM in a
// state the embedder could plausibly continue from (spec.md §7
// "Recovery"). Only KindInternal — a debug-mode invariant trip — is
// ever resumable; OOM and stack overflow leave the VM non-resumable.
func (k Kind) Resumable() bool {
	return k == KindInternal
}
