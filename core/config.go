package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultConfigName = "ogp"
	EnvPrefix         = "OGP"
)

// Config holds every path and setting the OGP pipeline depends on. It is
// injected explicitly so nothing is resolved relative to the binary.
type Config struct {
	ContentDirectory string
	FontsDirectory   string
	RegularFont      string
	BoldFont         string
	OutputDirectory  string
	PublicPrefix     string
	SiteURL          string
	Extensions       []string
	Workers          int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("contentDirectory", "src/content/articles")
	v.SetDefault("fontsDirectory", "src/utils/ogp/fonts")
	v.SetDefault("regularFont", "KaiseiHarunoUmi-Regular.ttf")
	v.SetDefault("boldFont", "KaiseiHarunoUmi-Bold.ttf")
	v.SetDefault("outputDirectory", "public/ogp")
	v.SetDefault("publicPrefix", "/ogp")
	v.SetDefault("siteURL", "https://www.tabichina.jp")
	v.SetDefault("extensions", []string{".mdx", ".md"})
	v.SetDefault("workers", 1)
}

// ParseConfig parses the configuration. If filename is empty, an optional
// "ogp" config file is looked up in the working directory. Otherwise the
// given file must exist. Values can be overridden with OGP_* environment
// variables, e.g. OGP_WORKERS=4.
func ParseConfig(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if filename == "" {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(filename)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if filename != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read: %w", err)
		}
	}

	conf := &Config{}
	err = v.Unmarshal(conf)
	if err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}

	err = conf.validate()
	if err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) validate() error {
	var err error

	c.ContentDirectory, err = filepath.Abs(c.ContentDirectory)
	if err != nil {
		return err
	}

	c.FontsDirectory, err = filepath.Abs(c.FontsDirectory)
	if err != nil {
		return err
	}

	c.OutputDirectory, err = filepath.Abs(c.OutputDirectory)
	if err != nil {
		return err
	}

	if c.RegularFont == "" || c.BoldFont == "" {
		return errors.New("config: RegularFont and BoldFont must be set")
	}

	if c.Workers < 1 {
		return fmt.Errorf("config: Workers should be at least 1, got %d", c.Workers)
	}

	if len(c.Extensions) == 0 {
		return errors.New("config: Extensions is empty")
	}

	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config: extension %q should start with a dot", ext)
		}
	}

	c.PublicPrefix = "/" + strings.Trim(c.PublicPrefix, "/")
	return nil
}
