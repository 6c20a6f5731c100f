package services

import "fmt"

type DarkModeStore interface {
	SaveDarkMode(dark bool) error
}

// PreferenceService holds the theme flag. It belongs to the presentation
// layer but is persisted next to the entries.
type PreferenceService struct {
	store    DarkModeStore
	darkMode bool
}

func NewPreferenceService(store DarkModeStore, dark bool) *PreferenceService {
	return &PreferenceService{store: store, darkMode: dark}
}

func (ps *PreferenceService) DarkMode() bool {
	return ps.darkMode
}

func (ps *PreferenceService) SetDarkMode(dark bool) error {
	if err := ps.store.SaveDarkMode(dark); err != nil {
		return fmt.Errorf("save dark mode: %w", err)
	}
	ps.darkMode = dark
	return nil
}

func (ps *PreferenceService) ToggleDarkMode() (bool, error) {
	next := !ps.darkMode
	return next, ps.SetDarkMode(next)
}
