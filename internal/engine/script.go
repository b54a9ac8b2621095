// SPDX-License-Identifier: MIT
package engine

import (
	applog "blockhost/internal/log"
	"fmt"
	"os"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// Script is an engine whose channel layout, parameters and block function
// are declared in Lua:
//
//	inputs = 1
//	outputs = 1
//	params = {
//	  { name = "Gain", min = 0, max = 2, init = 1, unit = "x" },
//	}
//	function prepare(sampleRate, n) end -- optional
//	function process(ins, outs, n, p)
//	  for i = 1, n do outs[1][i] = ins[1][i] * p[1] end
//	end
//
// Channel tables are 1-based and reused across blocks. Output tables are
// emptied before every call, so a sample the script leaves unwritten is
// silent. Boxing samples into Lua values allocates, so this engine trades
// real-time safety for flexibility.
//
// A runtime error inside the script silences the outputs for that block. The
// first error is kept for Err, which any goroutine may poll.
type Script struct {
	state   *lua.LState
	name    string
	inputs  int
	outputs int
	params  []ParameterInfo

	process *lua.LFunction
	prepare *lua.LFunction

	values    *lua.LTable
	insTable  *lua.LTable
	outsTable *lua.LTable
	ins       []*lua.LTable
	outs      []*lua.LTable
	blockSize int

	err atomic.Pointer[error]
}

var _ Engine = (*Script)(nil)

// LoadScript reads and compiles the Lua engine at path.
func LoadScript(path string) (*Script, error) {
	if path == "" {
		return nil, fmt.Errorf("script engine requires a script path")
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return NewScript(path, string(source))
}

// NewScript compiles source; name is used in log and error messages.
func NewScript(name, source string) (*Script, error) {
	L := lua.NewState()
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	s := &Script{
		state:   L,
		name:    name,
		inputs:  int(lua.LVAsNumber(L.GetGlobal("inputs"))),
		outputs: int(lua.LVAsNumber(L.GetGlobal("outputs"))),
	}

	fn, ok := L.GetGlobal("process").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("script %s does not define process(ins, outs, n, p)", name)
	}
	s.process = fn
	if fn, ok := L.GetGlobal("prepare").(*lua.LFunction); ok {
		s.prepare = fn
	}

	if s.inputs < 0 || s.outputs < 1 {
		L.Close()
		return nil, fmt.Errorf("script %s declares %d inputs and %d outputs", name, s.inputs, s.outputs)
	}

	if tbl, ok := L.GetGlobal("params").(*lua.LTable); ok {
		for i := 1; i <= tbl.Len(); i++ {
			entry, ok := tbl.RawGetInt(i).(*lua.LTable)
			if !ok {
				L.Close()
				return nil, fmt.Errorf("script %s: params[%d] is not a table", name, i)
			}
			info := ParameterInfo{
				Min:          float64(lua.LVAsNumber(entry.RawGetString("min"))),
				Max:          1,
				InitialValue: float64(lua.LVAsNumber(entry.RawGetString("init"))),
				DisplayName:  lua.LVAsString(entry.RawGetString("name")),
				Unit:         lua.LVAsString(entry.RawGetString("unit")),
			}
			if v := entry.RawGetString("max"); v != lua.LNil {
				info.Max = float64(lua.LVAsNumber(v))
			}
			if info.DisplayName == "" {
				info.DisplayName = fmt.Sprintf("param %d", i)
			}
			s.params = append(s.params, info)
		}
	}

	s.values = L.NewTable()
	for i, info := range s.params {
		s.values.RawSetInt(i+1, lua.LNumber(info.InitialValue))
	}

	s.insTable = L.NewTable()
	s.outsTable = L.NewTable()
	s.ins = make([]*lua.LTable, s.inputs)
	s.outs = make([]*lua.LTable, s.outputs)
	for i := range s.ins {
		s.ins[i] = L.NewTable()
		s.insTable.RawSetInt(i+1, s.ins[i])
	}
	for i := range s.outs {
		s.outs[i] = L.NewTable()
		s.outsTable.RawSetInt(i+1, s.outs[i])
	}

	applog.Infof("Engine: loaded script %s (%d in, %d out, %d params)", name, s.inputs, s.outputs, len(s.params))
	return s, nil
}

func (s *Script) NumParameters() int     { return len(s.params) }
func (s *Script) NumInputChannels() int  { return s.inputs }
func (s *Script) NumOutputChannels() int { return s.outputs }

func (s *Script) ParameterInfo(index int) ParameterInfo {
	if index < 0 || index >= len(s.params) {
		return ParameterInfo{}
	}
	return s.params[index]
}

func (s *Script) ParameterName(index int) string {
	return s.ParameterInfo(index).DisplayName
}

func (s *Script) SetParameterValue(index int, value float64) {
	if index < 0 || index >= len(s.params) {
		return
	}
	s.values.RawSetInt(index+1, lua.LNumber(value))
}

func (s *Script) PrepareToProcess(sampleRate float64, blockSize int) {
	if s.prepare == nil {
		return
	}
	err := s.state.CallByParam(lua.P{Fn: s.prepare, NRet: 0, Protect: true},
		lua.LNumber(sampleRate), lua.LNumber(blockSize))
	if err != nil {
		s.fail(err)
	}
}

func (s *Script) Process(inputs [][]float64, numInputs int, outputs [][]float64, numOutputs int, blockSize int) {
	written := max(s.blockSize, blockSize)
	if blockSize != s.blockSize {
		// Trim stale entries so #t stays equal to n inside the script.
		for _, tbl := range s.ins {
			for i := blockSize + 1; i <= s.blockSize; i++ {
				tbl.RawSetInt(i, lua.LNil)
			}
		}
		s.blockSize = blockSize
	}
	for _, tbl := range s.outs {
		for i := written; i > 0; i-- {
			tbl.RawSetInt(i, lua.LNil)
		}
	}

	for ch, tbl := range s.ins {
		if ch >= numInputs {
			for i := 1; i <= blockSize; i++ {
				tbl.RawSetInt(i, lua.LNumber(0))
			}
			continue
		}
		for i, x := range inputs[ch][:blockSize] {
			tbl.RawSetInt(i+1, lua.LNumber(x))
		}
	}

	err := s.state.CallByParam(lua.P{Fn: s.process, NRet: 0, Protect: true},
		s.insTable, s.outsTable, lua.LNumber(blockSize), s.values)
	if err != nil {
		s.fail(err)
		for ch := range numOutputs {
			clear(outputs[ch][:blockSize])
		}
		return
	}

	for ch := range numOutputs {
		out := outputs[ch][:blockSize]
		if ch >= len(s.outs) {
			clear(out)
			continue
		}
		tbl := s.outs[ch]
		for i := range out {
			out[i] = float64(lua.LVAsNumber(tbl.RawGetInt(i + 1)))
		}
	}
}

// Err returns the first runtime error raised by the script.
func (s *Script) Err() error {
	if err := s.err.Load(); err != nil {
		return *err
	}
	return nil
}

// Close releases the Lua state.
func (s *Script) Close() error {
	s.state.Close()
	return nil
}

// fail runs on the audio thread, so it only records the error.
func (s *Script) fail(err error) {
	if s.err.Load() != nil {
		return
	}
	wrapped := fmt.Errorf("script %s: %w", s.name, err)
	s.err.CompareAndSwap(nil, &wrapped)
}
