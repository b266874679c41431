package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/intelhub/schema"
	"pkt.systems/pslog"
)

// Prefs captures the persisted dashboard preferences.
type Prefs struct {
	ActiveTab schema.TabKey `json:"active_tab"`
}

const prefsFile = "prefs.json"

// Store persists dashboard preferences to disk atomically.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a persistent store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Load reads the persisted preferences. Missing file is not an error.
func (s *Store) Load() (Prefs, bool, error) {
	path := filepath.Join(s.dir, prefsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("prefs load miss")
			}
			return Prefs{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("prefs load failed", "err", err)
		}
		return Prefs{}, false, err
	}
	var prefs Prefs
	if err := json.Unmarshal(data, &prefs); err != nil {
		if s.log != nil {
			s.log.Warn("prefs load failed", "err", err)
		}
		return Prefs{}, false, err
	}
	if s.log != nil {
		s.log.Debug("prefs load ok", "active_tab", prefs.ActiveTab)
	}
	return prefs, true, nil
}

// Save writes the preferences to disk via a temp file and rename.
func (s *Store) Save(prefs Prefs) error {
	path := filepath.Join(s.dir, prefsFile)
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		if s.log != nil {
			s.log.Warn("prefs save failed", "err", err)
		}
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "prefs-*.json")
	if err != nil {
		if s.log != nil {
			s.log.Warn("prefs save failed", "err", err)
		}
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("prefs save failed", "err", err)
		}
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("prefs save failed", "err", err)
		}
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("prefs save failed", "err", err)
		}
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("prefs save failed", "err", err)
		}
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		if s.log != nil {
			s.log.Warn("prefs save failed", "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("prefs save ok", "active_tab", prefs.ActiveTab)
	}
	return nil
}
