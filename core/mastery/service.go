package mastery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/intellilearn/backend/core"
)

var (
	// ErrProfileNotFound is returned by a Store when no profile exists for a
	// learner. The Engine never surfaces it: a missing profile maps to a
	// default one.
	ErrProfileNotFound = errors.New("learner profile not found")

	NowFunc = time.Now // mockable
)

type (
	// Store persists learner profiles, one per learner ID, with full-document
	// overwrite semantics on Save.
	Store interface {
		Load(ctx context.Context, learnerID string) (Profile, error)
		Save(ctx context.Context, profile Profile) error
	}

	// Engine ties the rate calculation to persisted learner profiles.
	Engine struct {
		store  Store
		logger core.Logger

		// keyed mutexes serialize the read-modify-write cycle per learner;
		// without them two concurrent interactions for the same learner race
		// and the second full-profile write discards the first.
		mu    sync.Mutex
		locks map[string]*sync.Mutex
	}
)

func NewEngine(store Store, logger core.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (eng *Engine) learnerLock(learnerID string) *sync.Mutex {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	l, ok := eng.locks[learnerID]
	if !ok {
		l = new(sync.Mutex)
		eng.locks[learnerID] = l
	}
	return l
}

// GetProfile loads a learner's profile. A missing profile (or a failing read)
// yields a fresh default profile; nothing is persisted until the next
// RecordInteraction call.
func (eng *Engine) GetProfile(ctx context.Context, learnerID string) Profile {
	profile, err := eng.store.Load(ctx, learnerID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			eng.logger.Warn(fmt.Sprintf("loading profile %q, falling back to defaults: %v", learnerID, err), err)
		}
		return DefaultProfile(learnerID, NowFunc().UTC())
	}
	if profile.SubjectRates == nil {
		profile.SubjectRates = make(map[string]float64)
	}
	return profile
}

// RecordInteraction applies one interaction to a learner's profile: computes
// the rate delta, updates the overall and subject rates (clamped to [1,100]),
// appends the enriched interaction to the bounded history and persists the
// whole profile.
func (eng *Engine) RecordInteraction(ctx context.Context, learnerID string, in Interaction) (Profile, error) {
	lock := eng.learnerLock(learnerID)
	lock.Lock()
	defer lock.Unlock()

	profile := eng.GetProfile(ctx, learnerID)
	now := NowFunc().UTC()

	delta := ComputeDelta(in)
	profile.OverallRate = core.Clamp(profile.OverallRate+delta, MinRate, MaxRate)

	if in.Subject != "" {
		rate, ok := profile.SubjectRates[in.Subject]
		if !ok {
			rate = DefaultRate
		}
		profile.SubjectRates[in.Subject] = core.Clamp(rate+delta, MinRate, MaxRate)
	}

	if in.Topic == "" {
		in.Topic = in.Subject
	}
	in.Timestamp = now
	in.RateChange = delta
	profile.History = append(profile.History, in)
	if len(profile.History) > HistorySize {
		profile.History = profile.History[len(profile.History)-HistorySize:]
	}

	profile.LastUpdated = now

	if err := eng.store.Save(ctx, profile); err != nil {
		eng.logger.Error(fmt.Sprintf("saving profile %q: %v", learnerID, err), err)
		return Profile{}, pkgerrors.Wrap(err, "saving learner profile")
	}
	return profile, nil
}

// SummarizeSubjectHistory renders the learner's last 10 interactions in a
// subject as short human-readable lines, most recent last. Load failures log
// and return an empty summary.
func (eng *Engine) SummarizeSubjectHistory(ctx context.Context, learnerID, subject string) []string {
	profile, err := eng.store.Load(ctx, learnerID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			eng.logger.Error(fmt.Sprintf("loading profile %q for summary: %v", learnerID, err), err)
		}
		return []string{}
	}

	matched := make([]Interaction, 0, len(profile.History))
	for _, in := range profile.History {
		if in.Subject == subject {
			matched = append(matched, in)
		}
	}
	if len(matched) > 10 {
		matched = matched[len(matched)-10:]
	}

	summary := make([]string, 0, len(matched))
	for _, in := range matched {
		summary = append(summary, summarize(in))
	}
	return summary
}

func summarize(in Interaction) string {
	switch in.Type {
	case TypeQuiz:
		return fmt.Sprintf("Scored %g%% on %s quiz", in.score(), in.Topic)
	case TypeDoubt:
		return fmt.Sprintf("Asked about %s", in.Topic)
	case TypeContentView:
		return fmt.Sprintf("Studied %s", in.Topic)
	case TypeAssignment:
		return fmt.Sprintf("Completed %s assignment (%g%%)", in.Topic, in.score())
	default:
		return fmt.Sprintf("Interacted with %s", in.Topic)
	}
}
