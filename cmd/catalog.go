package cmd

import (
	"fmt"

	"github.com/katalog-cli/katalog/aggregator"
	"github.com/katalog-cli/katalog/catalog"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/pool"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/resolver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// newResolver builds the identity resolver from the resolver.* keys.
func newResolver() (*resolver.Resolver, error) {
	strategy, err := resolver.ParseStrategy(viper.GetString(key.ResolverStrategy))
	if err != nil {
		return nil, err
	}

	options := []resolver.Option{resolver.WithStrategy(strategy)}
	if viper.IsSet(key.ResolverThreshold) {
		options = append(options, resolver.WithThreshold(viper.GetFloat64(key.ResolverThreshold)))
	}
	if lang := viper.GetString(key.ResolverLanguage); lang != "" {
		options = append(options, resolver.WithLanguage(lang))
	}

	return resolver.New(options...), nil
}

// newPool loads the configured sources and wires them into a catalog.
// Callers close the returned registry when done.
func newPool() (*pool.Pool, error) {
	res, err := newResolver()
	if err != nil {
		return nil, err
	}

	registry, err := provider.Load(viper.GetStringSlice(key.DefaultSources))
	if err != nil {
		return nil, err
	}

	if registry.Len() == 0 {
		log.Warn("no sources installed")
	}

	cache := catalog.New(catalog.OptionsFromConfig())
	agg := aggregator.New(registry, res, cache, aggregator.OptionsFromConfig())

	log.WithFields(logrus.Fields{
		"sources":  registry.Names(),
		"strategy": res.Strategy(),
	}).Info("catalog ready")

	return pool.New(registry, agg, cache), nil
}

func mustPool() *pool.Pool {
	p, err := newPool()
	if err != nil {
		handleErr(fmt.Errorf("loading sources: %w", err))
	}
	return p
}
