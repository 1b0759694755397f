package cmd

import (
	"context"
	"fmt"
	"os"

	"al.essio.dev/pkg/shellescape"
	"golang.org/x/term"

	"opsdeck/internal/catalog"
	"opsdeck/internal/config"
	"opsdeck/internal/corrector"
	"opsdeck/internal/db"
	"opsdeck/internal/logger"
	"opsdeck/internal/remote"
	"opsdeck/internal/vocab"
)

// commandLine turns positional arguments back into one command line. A single
// argument is taken as typed; several keep the boundaries the local shell
// already split them on.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return shellescape.QuoteCommand(args)
}

// newCorrector builds a corrector from the corrector config section
func newCorrector(cfg *config.Config) (*corrector.Corrector, error) {
	opts := []corrector.Option{
		corrector.WithProgram(cfg.Corrector.Program),
		corrector.WithThreshold(cfg.Corrector.Threshold),
		corrector.WithLogger(logger.With("corrector")),
	}
	if len(cfg.Corrector.Vocabulary) > 0 {
		v, err := vocab.New(cfg.Corrector.Vocabulary...)
		if err != nil {
			return nil, fmt.Errorf("invalid corrector.vocabulary: %w", err)
		}
		opts = append(opts, corrector.WithVocabulary(v))
	}
	return corrector.New(opts...), nil
}

// loadCatalog returns the configured catalog file, or the built-in one
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.File == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", cfg.Catalog.File, err)
	}
	return c, nil
}

// remoteConfig maps the ssh section onto remote.Config
func remoteConfig(cfg *config.Config) remote.Config {
	return remote.Config{
		Host:                  cfg.SSH.Host,
		Port:                  cfg.SSH.Port,
		User:                  cfg.SSH.User,
		Password:              cfg.SSH.Password,
		KeyFile:               cfg.SSH.KeyFile,
		KnownHosts:            cfg.SSH.KnownHosts,
		InsecureIgnoreHostKey: cfg.SSH.InsecureIgnoreHostKey,
		Timeout:               cfg.SSH.Timeout,
	}
}

// dialer returns a connect function that prompts for a password when
// neither a password nor a key is configured and stdin is a terminal
func dialer(cfg *config.Config) func(ctx context.Context) (remote.Executor, error) {
	return func(ctx context.Context) (remote.Executor, error) {
		rc := remoteConfig(cfg)
		if rc.Password == "" && rc.KeyFile == "" {
			pw, err := promptPassword(rc)
			if err != nil {
				return nil, err
			}
			rc.Password = pw
		}
		client, err := remote.Dial(ctx, rc)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func promptPassword(rc remote.Config) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", remote.ErrNoAuth
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", rc.User, rc.Address())
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// openHistory opens run history; failures are logged and history is skipped
func openHistory(cfg *config.Config) *db.Storage {
	store, err := db.NewStorage(cfg.Database.Path)
	if err != nil {
		logger.With("history").Warn("run history disabled", "error", err)
		return nil
	}
	return store
}

// newRunner wires a runner from configuration
func newRunner(cfg *config.Config) (*runner, error) {
	c, err := newCorrector(cfg)
	if err != nil {
		return nil, err
	}
	return &runner{
		corrector: c,
		correct:   cfg.Corrector.Enabled,
		store:     openHistory(cfg),
		connect:   dialer(cfg),
		host:      cfg.SSH.Host,
		out:       os.Stdout,
		width:     0,
		spin:      true,
	}, nil
}
