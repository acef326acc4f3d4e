package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mechanistan/internal/bus/topic"
)

// state is one compiled instance of a script.
type state struct {
	L *lua.LState

	// queue holds messages emitted by the running call.
	queue []emitted
}

type emitted struct {
	topic topic.Topic
	text  string
}

// newState creates a Lua state with only safe libraries opened and the
// emit function installed.
func newState() *state {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// io, os, debug and package stay closed. These base functions reach
	// the file system or compile arbitrary chunks.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	st := &state{L: L}
	L.SetGlobal("emit", L.NewFunction(st.emit))
	return st
}

// emit implements emit(topic, text). Messages are queued until the current
// call returns so the bus never re-enters a running state. The bus.
// namespace belongs to topology events and cannot be emitted.
func (st *state) emit(L *lua.LState) int {
	t := topic.Topic(L.CheckString(1))
	switch {
	case !t.IsValid():
		L.ArgError(1, "invalid topic "+string(t))
	case t.IsReserved():
		L.ArgError(1, "reserved topic "+string(t))
	}
	text := L.OptString(2, "")
	st.queue = append(st.queue, emitted{topic: t, text: text})
	return 0
}

// drain returns and clears the emit queue.
func (st *state) drain() []emitted {
	q := st.queue
	st.queue = nil
	return q
}

func (st *state) close() {
	st.L.Close()
}
