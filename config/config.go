/*
Package config loads the settings of a msgauth process.

Configuration is a single JSON document. Missing values fall back to the
ones returned by Default.

	{
		"chain_id": 1,
		"banned_signers": ["0x..."],
		"max_depth": 10,
		"store": {"backend": "leveldb", "path": "/var/lib/msgauth"},
		"directory": {"file": "owners.json", "cache_ttl": "30s"},
		"log_level": "info"
	}
*/
package config

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"time"

	"github.com/iov-one/msgauth/denylist"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/verifier"
)

const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
)

// Config holds all process settings.
type Config struct {
	ChainID       int64     `json:"chain_id"`
	BannedSigners []string  `json:"banned_signers"`
	MaxDepth      int       `json:"max_depth"`
	Store         Store     `json:"store"`
	Directory     Directory `json:"directory"`
	LogLevel      string    `json:"log_level"`
}

// Store selects the ledger database.
type Store struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// Directory selects where account owners are read from. Exactly one of
// File and RPCURL must be set.
type Directory struct {
	File   string `json:"file,omitempty"`
	RPCURL string `json:"rpc_url,omitempty"`

	// CacheTTL enables caching of directory reads when not zero.
	CacheTTL Duration `json:"cache_ttl,omitempty"`
}

// Default returns a configuration using an in memory store and the main
// network.
func Default() Config {
	return Config{
		ChainID:  1,
		MaxDepth: verifier.DefaultMaxDepth,
		Store:    Store{Backend: BackendMemory},
		LogLevel: "info",
	}
}

// Load reads the configuration file at path on top of the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read %q: %s", path, err)
	}
	return Parse(raw)
}

// Parse decodes a JSON configuration on top of the defaults. Unknown
// fields are rejected.
func Parse(raw []byte) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot decode configuration: %s", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate returns an error if the configuration cannot be used.
func (c *Config) Validate() error {
	var errs error
	if c.ChainID < 0 {
		errs = errors.AppendField(errs, "ChainID", errors.Wrap(errors.ErrInput, "must not be negative"))
	}
	if c.MaxDepth < 1 {
		errs = errors.AppendField(errs, "MaxDepth", errors.Wrap(errors.ErrInput, "must be at least 1"))
	}
	if _, err := denylist.Parse(c.BannedSigners); err != nil {
		errs = errors.AppendField(errs, "BannedSigners", err)
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendLevelDB:
		if c.Store.Path == "" {
			errs = errors.AppendField(errs, "Store.Path", errors.Wrap(errors.ErrEmpty, "required by leveldb"))
		}
	default:
		errs = errors.AppendField(errs, "Store.Backend", errors.Wrapf(errors.ErrInput, "unknown backend %q", c.Store.Backend))
	}
	if (c.Directory.File == "") == (c.Directory.RPCURL == "") {
		errs = errors.AppendField(errs, "Directory", errors.Wrap(errors.ErrInput, "exactly one of file and rpc_url is required"))
	}
	if c.Directory.CacheTTL < 0 {
		errs = errors.AppendField(errs, "Directory.CacheTTL", errors.Wrap(errors.ErrInput, "must not be negative"))
	}
	switch c.LogLevel {
	case "debug", "info", "error", "none":
	default:
		errs = errors.AppendField(errs, "LogLevel", errors.Wrapf(errors.ErrInput, "unknown level %q", c.LogLevel))
	}
	return errs
}

// Chain returns the chain id as used for hashing.
func (c *Config) Chain() *big.Int {
	return big.NewInt(c.ChainID)
}

// DenyList returns the banned signers.
func (c *Config) DenyList() *denylist.List {
	l, err := denylist.Parse(c.BannedSigners)
	if err != nil {
		// Validate rejects such configuration.
		panic(err)
	}
	return l
}

// Duration is a time.Duration that serializes to JSON as a string, for
// example "1m30s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "duration must be a string")
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*d = Duration(v)
	return nil
}

// Duration returns the value as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
