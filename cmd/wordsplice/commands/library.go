package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/haivivi/wordsplice/pkg/cli"
	"github.com/haivivi/wordsplice/pkg/fragment"
	"github.com/haivivi/wordsplice/pkg/kv"
	"github.com/haivivi/wordsplice/pkg/storage"
	"github.com/haivivi/wordsplice/pkg/synth"
)

// libraryFlags override fields of the selected context.
type libraryFlags struct {
	consonantDirs []string
	vowelDir      string
	outputDir     string
	cacheDir      string
	noCache       bool
	gapMs         int
}

func (f *libraryFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.consonantDirs, "consonant-dir", nil, "consonant fragment directory or s3://bucket/prefix, searched in order (repeatable)")
	fs.StringVar(&f.vowelDir, "vowel-dir", "", "vowel fragment directory or s3://bucket/prefix")
	fs.StringVar(&f.outputDir, "out-dir", "", "directory or s3://bucket/prefix for generated words")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "fragment cache directory")
	fs.BoolVar(&f.noCache, "no-cache", false, "keep decoded fragments in memory only")
	fs.IntVar(&f.gapMs, "gap-ms", 0, "silence between syllables in milliseconds (-1 for none)")
}

// any reports whether the flags alone can describe a library.
func (f *libraryFlags) any() bool {
	return len(f.consonantDirs) > 0 || f.vowelDir != ""
}

func (f *libraryFlags) apply(c *cli.Context) {
	if len(f.consonantDirs) > 0 {
		c.ConsonantDirs = f.consonantDirs
	}
	if f.vowelDir != "" {
		c.VowelDir = f.vowelDir
	}
	if f.outputDir != "" {
		c.OutputDir = f.outputDir
	}
	if f.cacheDir != "" {
		c.CacheDir = f.cacheDir
	}
	if f.gapMs != 0 {
		c.GapMs = f.gapMs
	}
}

// library is an opened voice library.
type library struct {
	ctx   *cli.Context
	synth *synth.Synthesizer
	cache kv.Store
}

// openLibrary opens the fragment stores and the cache of c.
func openLibrary(c *cli.Context) (*library, error) {
	opts := c.StorageOptions()

	consonants := make([]storage.FileStore, 0, len(c.ConsonantDirs))
	for _, dir := range c.ConsonantDirs {
		fs, err := storage.Open(dir, opts)
		if err != nil {
			return nil, fmt.Errorf("consonant dir: %w", err)
		}
		consonants = append(consonants, storage.ReadOnly(fs))
	}
	vowels, err := storage.Open(c.VowelDir, opts)
	if err != nil {
		return nil, fmt.Errorf("vowel dir: %w", err)
	}

	cache, err := openCache(c)
	if err != nil {
		return nil, err
	}

	inv := c.Inventory()
	return &library{
		ctx: c,
		synth: &synth.Synthesizer{
			Inventory: inv,
			Resolver: &fragment.Resolver{
				Inventory:       inv,
				ConsonantStores: consonants,
				VowelStore:      storage.ReadOnly(vowels),
			},
			Library: fragment.NewLibrary(cache),
			Policy:  c.Policy(),
			Gap:     c.Gap(),
		},
		cache: cache,
	}, nil
}

// openCache opens the Badger cache of c, or an in-memory one with --no-cache.
func openCache(c *cli.Context) (kv.Store, error) {
	if overrides.noCache {
		return kv.NewMemory(nil), nil
	}
	dir, err := cacheDir(c)
	if err != nil {
		return nil, err
	}
	printVerbose("fragment cache: %s", dir)
	return kv.NewBadger(kv.BadgerOptions{Dir: dir, Logger: slog.Default()})
}

func cacheDir(c *cli.Context) (string, error) {
	if c.CacheDir != "" {
		return cli.EnsureDir(c.CacheDir)
	}
	paths, err := cli.NewPaths(appName)
	if err != nil {
		return "", fmt.Errorf("cache dir: %w", err)
	}
	return cli.EnsureDir(paths.CacheDir(c.Name))
}

// openOutput opens the output store, creating a local directory if needed.
func (l *library) openOutput() (storage.FileStore, error) {
	if l.ctx.OutputDir == "" {
		return nil, errors.New("no output directory: set output_dir in the context or use --out-dir")
	}
	opts := l.ctx.StorageOptions()
	opts.Create = true
	return storage.Open(l.ctx.OutputDir, opts)
}

func (l *library) Close() error {
	return l.cache.Close()
}
