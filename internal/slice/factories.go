package slice

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FactorySet is the collection-factory registry. Keys are
// "DeclaringClass.methodName"; a true value marks the method as a
// varargs-style collection factory whose elements arrive as ordinary
// argument-pass edges rather than stores into a collection object.
type FactorySet map[string]bool

// IsFactory reports whether class.method is a registered factory.
func (f FactorySet) IsFactory(class, method string) bool {
	return f[class+"."+method]
}

// DefaultFactories returns the built-in registry: java.util factories,
// the Kotlin stdlib collection builders, and Guava's immutable
// collections.
func DefaultFactories() FactorySet {
	return FactorySet{
		"java.util.Arrays.asList":              true,
		"java.util.List.of":                    true,
		"java.util.Set.of":                     true,
		"java.util.Map.of":                     true,
		"java.util.Collections.singletonList":  true,
		"java.util.Collections.singleton":      true,
		"java.util.EnumSet.of":                 true,
		"kotlin.collections.CollectionsKt.listOf":        true,
		"kotlin.collections.CollectionsKt.mutableListOf": true,
		"kotlin.collections.CollectionsKt.arrayListOf":   true,
		"kotlin.collections.SetsKt.setOf":                true,
		"kotlin.collections.SetsKt.mutableSetOf":         true,
		"kotlin.collections.MapsKt.mapOf":                true,
		"kotlin.collections.MapsKt.mutableMapOf":         true,
		"com.google.common.collect.ImmutableList.of": true,
		"com.google.common.collect.ImmutableSet.of":  true,
		"com.google.common.collect.ImmutableMap.of":  true,
	}
}

// factoryFile is the on-disk registry format:
//
//	factories = ["com.example.Lists.newList", ...]
//	replace = false
type factoryFile struct {
	Factories []string `toml:"factories"`
	// Replace drops the built-in registry instead of extending it.
	Replace bool `toml:"replace"`
}

// LoadFactories reads a TOML registry file and merges it over the
// built-in defaults (or replaces them when the file says so).
func LoadFactories(path string) (FactorySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file factoryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	set := FactorySet{}
	if !file.Replace {
		set = DefaultFactories()
	}
	for _, name := range file.Factories {
		set[name] = true
	}
	return set, nil
}
