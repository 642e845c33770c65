// Package config loads resolver configuration from a config file and the
// environment.
//
// Precedence, highest first: XMLCATALOG_* environment variables (and the
// conventional XML_CATALOG_FILES and XML_CATALOG_PREFER), the config file,
// defaults.  Command line flags are applied on top by the caller.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/drivers/fs"
	"github.com/birkland/xmlcatalog/drivers/storage"
	"github.com/birkland/xmlcatalog/logging"
	"github.com/birkland/xmlcatalog/resolv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variable of each config key
const EnvPrefix = "XMLCATALOG"

// Config keys
const (
	KeyCatalogs       = "catalogs"
	KeyCatalogBase    = "catalog_base"
	KeyCatalogDirs    = "catalog_dirs"
	KeyCatalogPattern = "catalog_pattern"
	KeyPrefer         = "prefer"
	KeyAllowPI        = "allow_pi"
	KeySystemAsURI    = "system_as_uri"
	KeyChainFailure   = "chain_failure"
	KeyLoadTimeout    = "load_timeout"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyLogOutput      = "log.output"
)

// Config is the resolver configuration
type Config struct {
	Catalogs []string
	// CatalogBase, if set, is the URL relative catalog locations are taken
	// relative to, instead of the working directory.
	CatalogBase    string
	CatalogDirs    []string
	CatalogPattern string
	Prefer         xmlcatalog.Prefer
	AllowPI        bool
	SystemAsURI    bool
	ChainFailure   resolv.ChainPolicy
	LoadTimeout    time.Duration

	Log logging.Config

	// ConfigFile is the file the configuration was read from, if any
	ConfigFile string
}

func defaults(v *viper.Viper) {
	v.SetDefault(KeyCatalogs, []string{})
	v.SetDefault(KeyCatalogBase, "")
	v.SetDefault(KeyCatalogDirs, []string{})
	v.SetDefault(KeyCatalogPattern, fs.DefaultPattern)
	v.SetDefault(KeyPrefer, "system")
	v.SetDefault(KeyAllowPI, true)
	v.SetDefault(KeySystemAsURI, false)
	v.SetDefault(KeyChainFailure, "ignore")
	v.SetDefault(KeyLoadTimeout, 30*time.Second)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyLogOutput, "stderr")
}

// Load reads the configuration.  If path is empty, .xmlcatalog.{yaml,json,toml}
// is looked for in the home and working directories, and it is not an error
// if there is none.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(KeyCatalogs, EnvPrefix+"_CATALOGS", "XML_CATALOG_FILES"); err != nil {
		return nil, errors.Wrapf(err, "could not bind %s", KeyCatalogs)
	}
	if err := v.BindEnv(KeyPrefer, EnvPrefix+"_PREFER", "XML_CATALOG_PREFER"); err != nil {
		return nil, errors.Wrapf(err, "could not bind %s", KeyPrefer)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config file %s", path)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".xmlcatalog")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, errors.Wrapf(err, "could not read config file")
			}
		}
	}

	return &Config{
		Catalogs:       v.GetStringSlice(KeyCatalogs),
		CatalogBase:    v.GetString(KeyCatalogBase),
		CatalogDirs:    v.GetStringSlice(KeyCatalogDirs),
		CatalogPattern: v.GetString(KeyCatalogPattern),
		Prefer:         xmlcatalog.ParsePrefer(v.GetString(KeyPrefer)).Or(xmlcatalog.PreferSystem),
		AllowPI:        v.GetBool(KeyAllowPI),
		SystemAsURI:    v.GetBool(KeySystemAsURI),
		ChainFailure:   resolv.ParseChainPolicy(v.GetString(KeyChainFailure)),
		LoadTimeout:    v.GetDuration(KeyLoadTimeout),
		Log: logging.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			Output: v.GetString(KeyLogOutput),
		},
		ConfigFile: v.ConfigFileUsed(),
	}, nil
}

// Engine returns the resolution options
func (c *Config) Engine() resolv.Config {
	return resolv.Config{
		Prefer:       c.Prefer,
		AllowPI:      c.AllowPI,
		SystemAsURI:  c.SystemAsURI,
		ChainFailure: c.ChainFailure,
	}
}

// Location places a catalog location given relative to CatalogBase
func (c *Config) Location(loc string) string {
	if c.CatalogBase == "" {
		return loc
	}
	return storage.Join(c.CatalogBase, loc)
}

// Locations lists the configured catalogs, followed by the catalogs
// discovered in the configured directories.
func (c *Config) Locations() ([]string, error) {
	locations := make([]string, 0, len(c.Catalogs))
	for _, loc := range c.Catalogs {
		locations = append(locations, c.Location(loc))
	}
	if len(c.CatalogDirs) == 0 {
		return locations, nil
	}

	found, err := fs.Discover(c.CatalogDirs, c.CatalogPattern)
	if err != nil {
		return nil, err
	}
	return append(locations, found...), nil
}
