package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps each flag name to its configuration key.
var flagKeys = map[string]string{
	"detail":                 KeyDetail,
	"exclude-same-size-dups": KeyExcludeSameSize,
	"search-by-file-name":    KeySearch,
	"manifest-classpath":     KeyManifestClasspath,
	"sizes":                  KeyShowSizes,
	"parallel":               KeyParallel,
	"output":                 KeyOutput,
	"quiet":                  KeyQuiet,
	"no-color":               KeyNoColor,
	"log-level":              KeyLogLevel,
}

// RegisterFlags adds the option flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Bool("detail", d.Detail, "List resources with more than one version and where they are")
	fs.Bool("exclude-same-size-dups", d.ExcludeSameSize, "Count as duplicates only resources whose copies differ in size")
	fs.String("search-by-file-name", d.Search, "Search resources by name using a regular expression")
	fs.Bool("manifest-classpath", d.ManifestClasspath, "Follow Class-Path entries of jar manifests")
	fs.Bool("sizes", d.ShowSizes, "Print byte sizes in the detail listing")
	fs.Int("parallel", d.Parallel, fmt.Sprintf("Number of classpath entries indexed concurrently (1-%d)", MaxParallel))
	fs.StringP("output", "o", string(d.Output), "Report format (text, json, yaml)")
	fs.Bool("quiet", d.Quiet, "Suppress progress output")
	fs.Bool("no-color", d.NoColor, "Disable colored output")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
}

// NewViper returns a viper instance with defaults, JAROVERLAP_* environment
// variables and the flags of fs bound to the configuration keys. A nil fs
// binds no flags.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyDetail, d.Detail)
	v.SetDefault(KeyExcludeSameSize, d.ExcludeSameSize)
	v.SetDefault(KeySearch, d.Search)
	v.SetDefault(KeyManifestClasspath, d.ManifestClasspath)
	v.SetDefault(KeyShowSizes, d.ShowSizes)
	v.SetDefault(KeyParallel, d.Parallel)
	v.SetDefault(KeyOutput, string(d.Output))
	v.SetDefault(KeyQuiet, d.Quiet)
	v.SetDefault(KeyNoColor, d.NoColor)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	return v, nil
}

// FromViper reads the options held by v. The working directory is not a
// viper key and keeps its default.
func FromViper(v *viper.Viper) *Options {
	o := Default()
	o.Detail = v.GetBool(KeyDetail)
	o.ExcludeSameSize = v.GetBool(KeyExcludeSameSize)
	o.Search = v.GetString(KeySearch)
	o.ManifestClasspath = v.GetBool(KeyManifestClasspath)
	o.ShowSizes = v.GetBool(KeyShowSizes)
	o.Parallel = v.GetInt(KeyParallel)
	o.Output = OutputFormat(strings.ToLower(v.GetString(KeyOutput)))
	o.Quiet = v.GetBool(KeyQuiet)
	o.NoColor = v.GetBool(KeyNoColor)
	o.LogLevel = v.GetString(KeyLogLevel)
	return o
}

// Load builds validated options from the flags of fs and the environment.
func Load(fs *pflag.FlagSet) (*Options, error) {
	v, err := NewViper(fs)
	if err != nil {
		return nil, err
	}
	o := FromViper(v)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
