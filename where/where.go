// Package where resolves the directories and files the application keeps on disk.
package where

import (
	"os"
	"path/filepath"

	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "KATALOG_CONFIG_PATH"

func mkdir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory. It honours KATALOG_CONFIG_PATH,
// then the platform user config dir.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return mkdir(custom)
	}

	return mkdir(filepath.Join(lo.Must(os.UserConfigDir()), constant.Katalog))
}

// Cache is the user cache directory, falling back to ./cache.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return mkdir(filepath.Join(base, constant.Katalog))
}

func Logs() string {
	return mkdir(filepath.Join(Config(), "logs"))
}

// Sources holds Lua scripts and static JSON catalogs.
func Sources() string {
	return mkdir(filepath.Join(Config(), "sources"))
}

// Queries is the search history file.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

func Temp() string {
	return mkdir(filepath.Join(os.TempDir(), constant.Katalog))
}
