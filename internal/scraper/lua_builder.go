// Package scraper compiles Lua source scripts and runs them inside interpreter states.
package scraper

import (
	"fmt"
	"sync"
	"time"

	"github.com/katalog-cli/katalog/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

type compiled struct {
	modTime time.Time
	proto   *lua.FunctionProto
}

var bytecodeCache sync.Map

// Compile parses and compiles the script at path. Prototypes are cached until the file changes.
func Compile(path string) (*lua.FunctionProto, error) {
	stat, err := filesystem.API().Stat(path)
	if err != nil {
		return nil, err
	}

	if cached, ok := bytecodeCache.Load(path); ok {
		if c := cached.(compiled); c.modTime.Equal(stat.ModTime()) {
			return c.proto, nil
		}
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	chunk, err := parse.Parse(file, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}

	bytecodeCache.Store(path, compiled{modTime: stat.ModTime(), proto: proto})
	return proto, nil
}

// PreCompileAndLoad executes the script at path inside L.
func PreCompileAndLoad(L *lua.LState, path string) error {
	proto, err := Compile(path)
	if err != nil {
		return err
	}

	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}

// Forget drops the cached prototype of path.
func Forget(path string) {
	bytecodeCache.Delete(path)
}
