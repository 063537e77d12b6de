package subscribeon

import (
	"errors"
	"fmt"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"github.com/bpradana/subscribeon/rx"
)

// ErrUnknownStrategy indicates a value outside the Strategy enumeration.
var ErrUnknownStrategy = errors.New("subscribeon: unknown scheduler strategy")

// Strategy selects the scheduler a decorated call's container subscribes on.
// The zero value is not a valid strategy.
type Strategy int

const (
	// Immediate runs subscription work inline.
	Immediate Strategy = iota + 1
	// Trampoline queues subscription work on the subscribing goroutine.
	Trampoline
	// NewThread starts a goroutine per subscription.
	NewThread
	// Computation uses the bounded GOMAXPROCS pool.
	Computation
	// IO uses the unbounded cached pool.
	IO
)

// Strategies lists every valid strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{Immediate, Trampoline, NewThread, Computation, IO}
}

func (s Strategy) String() string {
	switch s {
	case Immediate:
		return "immediate"
	case Trampoline:
		return "trampoline"
	case NewThread:
		return "new-thread"
	case Computation:
		return "computation"
	case IO:
		return "io"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool {
	return s >= Immediate && s <= IO
}

// ParseStrategy converts a case-insensitive name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "immediate":
		return Immediate, nil
	case "trampoline":
		return Trampoline, nil
	case "new-thread", "new_thread", "newthread":
		return NewThread, nil
	case "computation":
		return Computation, nil
	case "io":
		return IO, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	if err := s.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

// SchedulerFor maps a strategy to the shared rx scheduler implementing it.
// Strategies outside the enumeration are a programming error and panic with
// an error wrapping ErrUnknownStrategy.
func SchedulerFor(s Strategy) rx.Scheduler {
	switch s {
	case Immediate:
		return rx.Immediate()
	case Trampoline:
		return rx.Trampoline()
	case NewThread:
		return rx.NewThread()
	case Computation:
		return rx.Computation()
	case IO:
		return rx.IO()
	default:
		panic(fmt.Errorf("%w: %d could not be mapped to a scheduler", ErrUnknownStrategy, int(s)))
	}
}
