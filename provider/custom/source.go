package custom

import (
	"context"
	"fmt"
	"sync"

	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/source"
	lua "github.com/yuin/gopher-lua"
)

// luaSource serializes calls into its interpreter; an LState is not safe for concurrent use.
type luaSource struct {
	mu    sync.Mutex
	name  string
	state *lua.LState
}

func newLuaSource(name string, state *lua.LState) *luaSource {
	return &luaSource{
		name:  name,
		state: state,
	}
}

func (s *luaSource) Name() string {
	return s.name
}

func (s *luaSource) ID() string {
	return IDfromName(s.name)
}

func (s *luaSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

func (s *luaSource) Search(ctx context.Context, query string) ([]*content.Raw, error) {
	var (
		results []*content.Raw
		errs    []error
	)

	err := s.call(ctx, constant.SearchContentFn, func(table *lua.LTable) {
		table.ForEach(func(k, v lua.LValue) {
			if k.Type() != lua.LTNumber || v.Type() != lua.LTTable {
				return
			}

			raw, err := rawFromTable(v.(*lua.LTable))
			if err != nil {
				errs = append(errs, err)
				return
			}

			raw.SourceName = s.name
			results = append(results, raw)
		})
	}, lua.LString(query))
	if err != nil {
		return nil, err
	}

	if len(results) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}

	return results, nil
}

func (s *luaSource) Details(ctx context.Context, url string) (*content.Details, error) {
	s.mu.Lock()
	defined := s.state.GetGlobal(constant.ContentDetailsFn).Type() == lua.LTFunction
	s.mu.Unlock()

	if !defined {
		return nil, source.ErrNotSupported
	}

	var details *content.Details
	err := s.call(ctx, constant.ContentDetailsFn, func(table *lua.LTable) {
		details = detailsFromTable(table)
	}, lua.LString(url))
	if err != nil {
		return nil, err
	}

	return details, nil
}

// call executes a global Lua function that returns a table and hands the table
// to read while the interpreter is still locked.
func (s *luaSource) call(ctx context.Context, fn string, read func(*lua.LTable), args ...lua.LValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	luaFn := s.state.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return fmt.Errorf("function %s is not defined", fn)
	}

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	err := s.state.CallByParam(lua.P{
		Fn:      luaFn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", fn, ctxErr)
		}
		return err
	}

	retval := s.state.Get(-1)
	s.state.Pop(1)

	table, ok := retval.(*lua.LTable)
	if !ok {
		return fmt.Errorf("%s returned %s, expected %s", fn, retval.Type(), lua.LTTable)
	}

	read(table)
	return nil
}
