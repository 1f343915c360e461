package config

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Store holds the current configuration snapshot.
// Readers call Current on every use so a reloaded file takes effect without a restart.
type Store struct {
	v        *viper.Viper
	current  atomic.Pointer[Config]
	watching atomic.Bool

	mu       sync.Mutex
	watchers []func(*Config)
}

// Static returns a Store pinned to cfg, with no backing file
func Static(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Current returns the active snapshot. Callers must not mutate it.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Set replaces the active snapshot
func (s *Store) Set(cfg *Config) {
	s.current.Store(cfg)
	s.notify(cfg)
}

// File returns the config file in use, or "" when running on defaults and env
func (s *Store) File() string {
	if s.v == nil {
		return ""
	}
	return s.v.ConfigFileUsed()
}

// ErrWatching is returned by Reload once Watch owns the config file.
var ErrWatching = errors.New("config: file is being watched")

// Reload re-reads the config file and swaps in the new snapshot.
// The viper instance is not safe for concurrent use, so Reload refuses
// to run after Watch has started.
func (s *Store) Reload() error {
	if s.v == nil || s.File() == "" {
		return nil
	}
	if s.watching.Load() {
		return ErrWatching
	}
	return s.reload()
}

func (s *Store) reload() error {
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return s.refresh()
}

// OnChange registers fn to run after every snapshot swap
func (s *Store) OnChange(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Watch starts watching the config file. Read and decode failures are passed
// to onError and the previous snapshot stays active. Calling it again is a no-op.
func (s *Store) Watch(onError func(error)) {
	if s.File() == "" || !s.watching.CompareAndSwap(false, true) {
		return
	}
	// viper only logs its own read failure, so read again to surface it.
	// Both reads run on the watcher goroutine.
	s.v.OnConfigChange(func(fsnotify.Event) {
		if err := s.reload(); err != nil && onError != nil {
			onError(err)
		}
	})
	s.v.WatchConfig()
}

func (s *Store) refresh() error {
	cfg, err := decode(s.v)
	if err != nil {
		return err
	}
	s.current.Store(cfg)
	s.notify(cfg)
	return nil
}

func (s *Store) notify(cfg *Config) {
	s.mu.Lock()
	watchers := append([]func(*Config){}, s.watchers...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(cfg)
	}
}
