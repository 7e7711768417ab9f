package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/config"
	"github.com/iov-one/msgauth/directory"
	"github.com/iov-one/msgauth/ledger"
	"github.com/iov-one/msgauth/store"
	"github.com/iov-one/msgauth/store/leveldb"
	"github.com/tendermint/tendermint/libs/log"
)

// flConfig registers the configuration file flag. MSGAUTH_CONFIG overrides
// the default path.
func flConfig(fl *flag.FlagSet) *string {
	path := os.Getenv("MSGAUTH_CONFIG")
	if path == "" {
		path = "msgauth.json"
	}
	return fl.String("config", path, "Path to the configuration file.")
}

// logOutput is where all commands log. Tests replace it.
var logOutput io.Writer = os.Stderr

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(logOutput))
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

// runtime bundles everything a ledger command needs.
type runtime struct {
	conf    *config.Config
	logger  log.Logger
	ledger  *ledger.Ledger
	closers []func() error
}

func (r *runtime) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if e := r.closers[i](); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// open loads the configuration and builds the ledger it describes.
func open(ctx context.Context, confPath string) (*runtime, error) {
	conf, err := config.Load(confPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration: %s", err)
	}
	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("cannot configure logger: %s", err)
	}
	rt := &runtime{conf: conf, logger: logger}

	var db msgauth.CacheableKVStore
	switch conf.Store.Backend {
	case config.BackendLevelDB:
		ldb, err := leveldb.Open(conf.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("cannot open store: %s", err)
		}
		rt.closers = append(rt.closers, ldb.Close)
		db = ldb
	default:
		db = store.MemStore()
	}

	var dir directory.OwnerDirectory
	if conf.Directory.File != "" {
		dir, err = directory.LoadStaticFile(conf.Directory.File)
	} else {
		dir, err = directory.DialChain(ctx, conf.Directory.RPCURL, logger)
	}
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("cannot open directory: %s", err)
	}
	if ttl := conf.Directory.CacheTTL.Duration(); ttl > 0 {
		cached, err := directory.NewCached(ctx, dir, ttl)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("cannot create directory cache: %s", err)
		}
		rt.closers = append(rt.closers, cached.Close)
		dir = cached
	}

	rt.ledger = ledger.New(ledger.NewKVStore(db), dir, conf.DenyList(), conf.Chain(),
		ledger.WithLogger(logger),
		ledger.WithMaxDepth(conf.MaxDepth),
	)
	logger.Debug("ledger ready", "store", conf.Store.Backend, "chain", conf.ChainID)
	return rt, nil
}
