// Package profile stores searcher profiles, one JSON document per user.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jimezsa/jobradar/internal/cvparse"
	"github.com/jimezsa/jobradar/internal/models"
)

var (
	ErrNotFound = errors.New("profile not found")
	ErrExists   = errors.New("profile already exists")
	ErrInvalid  = errors.New("invalid profile")
)

type Store struct {
	dir   string
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("profiles dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, now: time.Now, newID: uuid.NewString}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Create stores a new profile for p.UserID. CV text, when present, is run
// through the feature extractor before saving.
func (s *Store) Create(p models.Profile) (models.Profile, error) {
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return models.Profile{}, fmt.Errorf("%w: user_id is required", ErrInvalid)
	}
	if err := canonicalRemote(&p); err != nil {
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(p.UserID)); err == nil {
		return models.Profile{}, fmt.Errorf("%s: %w", p.UserID, ErrExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return models.Profile{}, err
	}

	now := s.now()
	p.ID = s.newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if strings.TrimSpace(p.CVText) != "" {
		ApplyFeatures(&p, cvparse.Extract(p.CVText))
	}
	normalizeLists(&p)

	if err := s.save(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) Get(userID string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID)
}

// Update applies patch to the stored profile. A patch carrying CV text
// re-extracts the CV features.
func (s *Store) Update(userID string, patch models.ProfilePatch) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load(userID)
	if err != nil {
		return models.Profile{}, err
	}

	patch.Apply(&p)
	if err := canonicalRemote(&p); err != nil {
		return models.Profile{}, err
	}
	if patch.CVText != nil && strings.TrimSpace(p.CVText) != "" {
		ApplyFeatures(&p, cvparse.Extract(p.CVText))
	}
	p.UpdatedAt = s.now()
	normalizeLists(&p)

	if err := s.save(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) Delete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(userID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", userID, ErrNotFound)
		}
		return err
	}
	return nil
}

// canonicalRemote rewrites the remote preference to its canonical form so it
// stays usable as a search constraint.
func canonicalRemote(p *models.Profile) error {
	remote, ok := models.ParseRemoteType(string(p.PreferredRemote))
	if !ok {
		return fmt.Errorf("%w: preferred_remote %q (want remote, hybrid or onsite)", ErrInvalid, p.PreferredRemote)
	}
	p.PreferredRemote = remote
	return nil
}

func (s *Store) load(userID string) (models.Profile, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Profile{}, fmt.Errorf("%s: %w", userID, ErrNotFound)
		}
		return models.Profile{}, err
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Profile{}, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return p, nil
}

func (s *Store) save(p models.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(p.UserID), append(data, '\n'), 0o644)
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.dir, FileName(userID))
}

// FileName maps a user id to its document name; "@", "/" and "\" become "_".
func FileName(userID string) string {
	safe := strings.NewReplacer("@", "_", "/", "_", `\`, "_").Replace(strings.TrimSpace(userID))
	return safe + ".json"
}

func normalizeLists(p *models.Profile) {
	for _, list := range []*[]string{
		&p.Skills, &p.Sectors, &p.Languages,
		&p.PreferredContractTypes, &p.PreferredCountries, &p.PreferredCategories,
	} {
		if *list == nil {
			*list = []string{}
		}
	}
}
