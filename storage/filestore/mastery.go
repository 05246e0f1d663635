// Package filestore persists mastery profiles as JSON documents on disk,
// one file per learner. It is the default store for development setups
// that run without Postgres.
package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/intellilearn/backend/core/mastery"
)

type MasteryStore struct {
	dir string
}

var _ mastery.Store = (*MasteryStore)(nil) // interface compliance check

func NewMasteryStore(dir string) *MasteryStore {
	return &MasteryStore{dir: dir}
}

func (store *MasteryStore) path(learnerID string) string {
	return filepath.Join(store.dir, learnerID+".json")
}

func (store *MasteryStore) Load(ctx context.Context, learnerID string) (mastery.Profile, error) {
	data, err := os.ReadFile(store.path(learnerID))
	if err != nil {
		if os.IsNotExist(err) {
			return mastery.Profile{}, mastery.ErrProfileNotFound
		}
		return mastery.Profile{}, errors.Wrap(err, "reading profile")
	}

	var prof mastery.Profile
	if err = json.Unmarshal(data, &prof); err != nil {
		return mastery.Profile{}, errors.Wrap(err, "unmarshaling profile")
	}
	return prof, nil
}

func (store *MasteryStore) Save(ctx context.Context, prof mastery.Profile) error {
	if err := os.MkdirAll(store.dir, 0755); err != nil {
		return errors.Wrap(err, "creating data dir")
	}

	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling profile")
	}

	// write to a temp file then rename so readers never see a partial doc
	tmp, err := os.CreateTemp(store.dir, prof.LearnerID+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing profile")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), store.path(prof.LearnerID)); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}
