package topology

import (
	"context"
	"fmt"

	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
)

// Result summarizes a scenario run.
type Result struct {
	// Executed is the number of steps performed.
	Executed int

	// Rejected holds the attach and detach steps the bus refused.
	Rejected []*StepError
}

// Run plays steps against the forest in order. Rejected attach and detach
// steps are recorded in the result and do not stop the run; the bus has
// already reported them as events. Unknown ids and context cancellation
// stop the run.
func Run(ctx context.Context, f *Forest, steps []Step) (Result, error) {
	var res Result

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		kind := step.Kind()
		switch kind {
		case "attach", "detach":
			ids := step.Attach
			if kind == "detach" {
				ids = step.Detach
			}
			if len(ids) != 2 {
				return res, &StepError{Index: i, Kind: kind, Err: fmt.Errorf("need two ids, got %d", len(ids))}
			}
			a, b, err := f.pair(ids[0], ids[1])
			if err != nil {
				return res, &StepError{Index: i, Kind: kind, Err: err}
			}

			if kind == "attach" {
				err = a.Attach(b)
			} else {
				err = a.Detach(b)
			}
			if err != nil {
				res.Rejected = append(res.Rejected, &StepError{Index: i, Kind: kind, Err: err})
			}

		case "broadcast":
			bs := step.Broadcast
			from, ok := f.nodes[bs.From]
			if !ok {
				return res, &StepError{Index: i, Kind: kind, Err: fmt.Errorf("%w: %q", ErrUnknownBus, bs.From)}
			}
			from.Broadcast(topic.Topic(bs.Topic), bs.Text, bs.args()...)

		default:
			return res, &StepError{Index: i, Kind: "step", Err: fmt.Errorf("%w: empty step", ErrInvalidDocument)}
		}

		res.Executed++
	}

	return res, nil
}

func (f *Forest) pair(a, b string) (*bus.Node, *bus.Node, error) {
	na, ok := f.nodes[a]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBus, a)
	}
	nb, ok := f.nodes[b]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBus, b)
	}
	return na, nb, nil
}

func (b *BroadcastStep) args() []any {
	args := append([]any(nil), b.Args...)
	if len(b.Kwargs) > 0 {
		args = append(args, bus.Kwargs(b.Kwargs))
	}
	return args
}
