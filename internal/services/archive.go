package services

import (
	"fmt"
	"strings"
	"time"

	"reality-archive/internal/database"
)

// SimilarLimit caps the number of similar entries shown for a draft.
const SimilarLimit = 3

// EntryRepository persists the full entry list.
type EntryRepository interface {
	SaveEntries(entries []database.Entry) error
}

// ArchiveService is the ordered record store, newest entry first. Every
// mutation is written through before it becomes visible.
type ArchiveService struct {
	repository EntryRepository
	entries    []database.Entry
	onChange   func(entries []database.Entry)
}

func NewArchiveService(repo EntryRepository) *ArchiveService {
	return &ArchiveService{
		repository: repo,
	}
}

// OnChange registers the hook run after each successful mutation.
func (as *ArchiveService) OnChange(fn func(entries []database.Entry)) {
	as.onChange = fn
}

// Restore replaces the in-memory list with hydrated entries without writing.
// Entries that break an entry invariant or repeat an earlier id are dropped;
// the returned errors say why.
func (as *ArchiveService) Restore(entries []database.Entry) []error {
	var dropped []error
	kept := make([]database.Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := checkEntry(e); err != nil {
			dropped = append(dropped, err)
			continue
		}
		if _, dup := seen[e.ID]; dup {
			dropped = append(dropped, fmt.Errorf("%w: duplicate id %s", ErrInvalidInput, e.ID))
			continue
		}
		seen[e.ID] = struct{}{}
		kept = append(kept, e)
	}
	as.entries = kept
	return dropped
}

// checkEntry validates a single entry: id present, intensity in range, and
// completed exactly when a result is recorded.
func checkEntry(entry database.Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: entry without id", ErrInvalidInput)
	}
	if entry.Intensity < database.MinIntensity || entry.Intensity > database.MaxIntensity {
		return fmt.Errorf("%w: entry %s intensity %d outside %d..%d", ErrInvalidInput, entry.ID, entry.Intensity, database.MinIntensity, database.MaxIntensity)
	}
	if entry.Completed != (entry.Result != nil) {
		return fmt.Errorf("%w: entry %s completed=%t disagrees with its result", ErrInvalidInput, entry.ID, entry.Completed)
	}
	return nil
}

// Entries returns a copy of the stored entries, newest first.
func (as *ArchiveService) Entries() []database.Entry {
	return append([]database.Entry(nil), as.entries...)
}

func (as *ArchiveService) Len() int {
	return len(as.entries)
}

func (as *ArchiveService) Prepend(entry database.Entry) error {
	if err := checkEntry(entry); err != nil {
		return err
	}
	if _, ok := as.Get(entry.ID); ok {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidInput, entry.ID)
	}

	next := make([]database.Entry, 0, len(as.entries)+1)
	next = append(next, entry)
	next = append(next, as.entries...)
	return as.replace(next)
}

// Complete records the experiment result. Completing again with the same
// result changes nothing; a different result replaces the previous one.
func (as *ArchiveService) Complete(id, result string) (database.Entry, error) {
	if strings.TrimSpace(result) == "" {
		return database.Entry{}, fmt.Errorf("%w: empty result", ErrInvalidInput)
	}

	idx := as.index(id)
	if idx < 0 {
		return database.Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}

	current := as.entries[idx]
	if current.Completed && current.ResultText() == result {
		return current, nil
	}

	updated := current
	updated.Result = &result
	updated.Completed = true

	next := as.Entries()
	next[idx] = updated
	if err := as.replace(next); err != nil {
		return database.Entry{}, err
	}
	return updated, nil
}

func (as *ArchiveService) Get(id string) (database.Entry, bool) {
	if idx := as.index(id); idx >= 0 {
		return as.entries[idx], true
	}
	return database.Entry{}, false
}

// Resolve finds an entry by full id or by a unique id prefix.
func (as *ArchiveService) Resolve(ref string) (database.Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return database.Entry{}, fmt.Errorf("%w: empty id", ErrInvalidInput)
	}
	if e, ok := as.Get(ref); ok {
		return e, nil
	}

	var found []database.Entry
	for _, e := range as.entries {
		if strings.HasPrefix(e.ID, ref) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return database.Entry{}, fmt.Errorf("entry %s: %w", ref, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return database.Entry{}, fmt.Errorf("%w: id prefix %s matches %d entries", ErrInvalidInput, ref, len(found))
	}
}

// Similar returns up to limit entries whose symptom contains the given one
// or that share the body part.
func (as *ArchiveService) Similar(symptom string, part database.BodyPart, limit int) []database.Entry {
	if symptom == "" {
		return nil
	}
	needle := strings.ToLower(symptom)

	var similar []database.Entry
	for _, e := range as.entries {
		if len(similar) == limit {
			break
		}
		if strings.Contains(strings.ToLower(e.Symptom), needle) || (part != "" && e.BodyPart == part) {
			similar = append(similar, e)
		}
	}
	return similar
}

// Overdue lists open experiments whose scheduled time has passed.
func (as *ArchiveService) Overdue(now time.Time) []database.Entry {
	var overdue []database.Entry
	for _, e := range as.entries {
		if !e.Completed && !e.ExperimentTime.IsZero() && !e.ExperimentTime.After(now) {
			overdue = append(overdue, e)
		}
	}
	return overdue
}

func (as *ArchiveService) index(id string) int {
	for i, e := range as.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (as *ArchiveService) replace(next []database.Entry) error {
	if err := as.repository.SaveEntries(next); err != nil {
		return fmt.Errorf("save entries: %w", err)
	}
	as.entries = next
	if as.onChange != nil {
		as.onChange(as.Entries())
	}
	return nil
}
