package inmemdb

import (
	"context"

	"github.com/intellilearn/backend/core/mastery"
)

type masteryStore struct {
	db *masteryTable
}

func NewMasteryStore(db *DB) mastery.Store {
	return &masteryStore{db: db.mastery}
}

func (store *masteryStore) Load(ctx context.Context, learnerID string) (mastery.Profile, error) {
	store.db.mutex.RLock()
	defer store.db.mutex.RUnlock()

	if prof, ok := store.db.table[learnerID]; ok {
		return *prof, nil
	}
	return mastery.Profile{}, mastery.ErrProfileNotFound
}

func (store *masteryStore) Save(ctx context.Context, prof mastery.Profile) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()

	store.db.table[prof.LearnerID] = &prof
	return nil
}
