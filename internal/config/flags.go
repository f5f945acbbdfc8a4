package config

import (
	"strings"

	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// posflagProvider adapts cobra/pflag flags into a koanf provider, translating
// kebab-case flag names to the snake_case keys Config's struct tags use, and
// skipping flags the user never actually set so defaults and file/env values
// aren't clobbered by a flag's zero value.
func posflagProvider(flags *pflag.FlagSet, k *koanf.Koanf) koanf.Provider {
	return posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		return key, posflag.FlagVal(flags, f)
	})
}
