package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellilearn/backend/core/mastery"
)

func TestMasteryStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "mastery") // must not exist yet
	store := NewMasteryStore(dir)

	t.Run("load missing profile", func(t *testing.T) {
		_, err := store.Load(ctx, "s-001")
		assert.Equal(t, mastery.ErrProfileNotFound, err)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		score := 85.0
		prof := mastery.Profile{
			LearnerID:    "s-001",
			OverallRate:  61.5,
			SubjectRates: map[string]float64{"Math": 63.0},
			History: []mastery.Interaction{
				{Type: mastery.TypeQuiz, Subject: "Math", Topic: "Math", Score: &score, Timestamp: now, RateChange: 1.5},
			},
			LastUpdated: now,
		}
		require.NoError(t, store.Save(ctx, prof))

		got, err := store.Load(ctx, "s-001")
		require.NoError(t, err)
		assert.Equal(t, prof.LearnerID, got.LearnerID)
		assert.Equal(t, prof.OverallRate, got.OverallRate)
		assert.Equal(t, prof.SubjectRates, got.SubjectRates)
		require.Len(t, got.History, 1)
		assert.Equal(t, mastery.TypeQuiz, got.History[0].Type)
		require.NotNil(t, got.History[0].Score)
		assert.Equal(t, score, *got.History[0].Score)
		assert.True(t, got.LastUpdated.Equal(now))
	})

	t.Run("save overwrites previous doc", func(t *testing.T) {
		prof := mastery.DefaultProfile("s-001", time.Now().UTC())
		prof.OverallRate = 72.25
		require.NoError(t, store.Save(ctx, prof))

		got, err := store.Load(ctx, "s-001")
		require.NoError(t, err)
		assert.Equal(t, 72.25, got.OverallRate)
		assert.Empty(t, got.History)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.Equal(t, ".json", filepath.Ext(entry.Name()))
		}
	})
}
