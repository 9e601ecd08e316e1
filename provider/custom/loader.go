// Package custom runs content sources written as Lua scripts.
package custom

import (
	"fmt"

	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/internal/scraper"
	"github.com/katalog-cli/katalog/source"
	"github.com/katalog-cli/katalog/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// IDfromName is the provider id of the Lua script with the given base name.
func IDfromName(name string) string {
	return name + " lua"
}

// LoadSource executes the script at path and checks it defines the required functions.
func LoadSource(path string) (source.Source, error) {
	state := lua.NewState()
	libs.Preload(state)

	if err := scraper.PreCompileAndLoad(state, path); err != nil {
		state.Close()
		return nil, err
	}

	name := util.FileStem(path)

	if state.GetGlobal(constant.SearchContentFn).Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("function %s is required but not defined in %s", constant.SearchContentFn, name)
	}

	return newLuaSource(name, state), nil
}
