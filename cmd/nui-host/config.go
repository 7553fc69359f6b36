package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the host configuration after merging flags, the optional
// config file and NUI_ environment variables.
type Config struct {
	ConfigFile  string        `mapstructure:"config"`
	Script      string        `mapstructure:"script"`
	Addr        string        `mapstructure:"addr"`
	Exec        string        `mapstructure:"exec"`
	Sim         bool          `mapstructure:"sim"`
	Discover    bool          `mapstructure:"discover"`
	Instance    string        `mapstructure:"instance"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Interactive bool          `mapstructure:"interactive"`
	LogLevel    string        `mapstructure:"log-level"`
	LogFormat   string        `mapstructure:"log-format"`
	ProtocolLog string        `mapstructure:"protocol-log"`
	Attrs       string        `mapstructure:"attrs"`
}

// registerFlags defines the host flags on fs.
func registerFlags(fs *flag.FlagSet) {
	fs.String("config", "", "Configuration file path (yaml)")
	fs.String("script", "", "Lua script to run")
	fs.String("addr", "localhost:7420", "Native host address")
	fs.String("exec", "", "Spawn a native host binary and talk to it over stdio")
	fs.Bool("sim", false, "Run against an in-process simulated native runtime")
	fs.Bool("discover", false, "Find the native host via mDNS")
	fs.String("instance", "", "mDNS instance name to connect to (default: first found)")
	fs.Duration("timeout", 5*time.Second, "Connect and discovery timeout")
	fs.Bool("interactive", false, "Start a Lua REPL after the script")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-format", "text", "Log format: text, json, zap")
	fs.String("protocol-log", "", "Write protocol events to this file (.nlog)")
	fs.String("attrs", "", "Attribute override table (yaml)")
}

// loadConfig merges flag defaults, the config file, NUI_ environment
// variables and explicitly set flags, in increasing precedence.
func loadConfig(fs *flag.FlagSet) (Config, error) {
	v := viper.New()

	fs.VisitAll(func(f *flag.Flag) {
		v.SetDefault(f.Name, f.DefValue)
	})

	v.SetEnvPrefix("NUI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path := lookup(fs, v, "config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		v.Set(f.Name, f.Value.String())
	})

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, c.validate()
}

// lookup returns a flag value when set on the command line, else viper's.
func lookup(fs *flag.FlagSet, v *viper.Viper, name string) string {
	if f := fs.Lookup(name); f != nil {
		set := false
		fs.Visit(func(g *flag.Flag) {
			if g.Name == name {
				set = true
			}
		})
		if set {
			return f.Value.String()
		}
	}
	return v.GetString(name)
}

func (c Config) validate() error {
	modes := 0
	for _, on := range []bool{c.Sim, c.Discover, c.Exec != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("-sim, -discover and -exec are mutually exclusive")
	}
	if c.Script == "" && !c.Interactive {
		return fmt.Errorf("nothing to run: give -script or -interactive")
	}
	switch c.LogFormat {
	case "text", "json", "zap":
	default:
		return fmt.Errorf("invalid log format %q (must be text, json, or zap)", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
