package script

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mechanistan/internal/bus"
)

// DefaultTimeout bounds a single on_message call.
const DefaultTimeout = time.Second

const handlerName = "on_message"

// Script is a Lua subscriber bound to one bus node.
//
// Calls into the Lua state are serialized, so a Script may be reloaded from
// another goroutine while the bus delivers to it.
type Script struct {
	path    string
	node    *bus.Node
	timeout time.Duration
	onError func(error)

	mu     sync.Mutex
	st     *state
	closed bool
}

// Option configures a Script.
type Option func(*Script)

// WithTimeout sets the time limit for one on_message call.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) {
		s.timeout = d
	}
}

// WithErrorHandler sets the function called when on_message fails.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Script) {
		s.onError = fn
	}
}

// Load compiles the script at path and binds it to node. Anything the
// script emits while loading is broadcast once the load succeeds.
func Load(path string, node *bus.Node, opts ...Option) (*Script, error) {
	s := &Script{
		path:    path,
		node:    node,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	st, err := s.compile()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.st = st
	pending := st.drain()
	s.mu.Unlock()

	s.flush(pending)
	return s, nil
}

// Path returns the script file path.
func (s *Script) Path() string {
	return s.path
}

// Node returns the node the script broadcasts from.
func (s *Script) Node() *bus.Node {
	return s.node
}

// Subscriber returns a bus subscriber that runs the script. Failures go to
// the error handler and never interrupt delivery.
func (s *Script) Subscriber() bus.Subscriber {
	return func(msg bus.Message) {
		if err := s.Handle(msg); err != nil && s.onError != nil {
			s.onError(err)
		}
	}
}

// Handle runs on_message for msg, then broadcasts anything it emitted.
func (s *Script) Handle(msg bus.Message) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	err := s.call(msg)
	pending := s.st.drain()
	s.mu.Unlock()

	if err != nil {
		return &ScriptError{Path: s.path, Op: handlerName, Err: err}
	}
	s.flush(pending)
	return nil
}

// Reload recompiles the script file. The running state is replaced only
// when the new file loads cleanly.
func (s *Script) Reload() error {
	st, err := s.compile()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		st.close()
		return ErrClosed
	}
	old := s.st
	s.st = st
	pending := st.drain()
	s.mu.Unlock()

	old.close()
	s.flush(pending)
	return nil
}

// Close releases the Lua state. It is safe to call more than once.
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.st.close()
	return nil
}

// compile builds a fresh state and runs the script file in it.
func (s *Script) compile() (*state, error) {
	st := newState()

	if err := st.L.DoFile(s.path); err != nil {
		st.close()
		return nil, &ScriptError{Path: s.path, Op: "load", Err: err}
	}
	if st.L.GetGlobal(handlerName).Type() != lua.LTFunction {
		st.close()
		return nil, &ScriptError{Path: s.path, Op: "load", Err: ErrNoHandler}
	}
	return st, nil
}

// call invokes on_message under the timeout. The caller holds s.mu.
func (s *Script) call(msg bus.Message) (err error) {
	L := s.st.L

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	L.SetContext(ctx)
	defer L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	return L.CallByParam(lua.P{
		Fn:      L.GetGlobal(handlerName),
		NRet:    0,
		Protect: true,
	}, messageTable(L, msg))
}

func (s *Script) flush(pending []emitted) {
	for _, e := range pending {
		s.node.Broadcast(e.topic, e.text)
	}
}

func messageTable(L *lua.LState, msg bus.Message) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("topic", lua.LString(msg.Topic))
	tbl.RawSetString("payload", lua.LString(msg.Payload))
	tbl.RawSetString("sender", lua.LString(msg.Sender))
	tbl.RawSetString("size", lua.LNumber(msg.Size))
	return tbl
}
