package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ipgeo-client/internal/apiclient"
	"ipgeo-client/internal/models"
	"ipgeo-client/internal/validation"

	"github.com/rs/zerolog"
)

// User-facing messages.
const (
	MsgInvalidIP       = "Please enter a valid IP address"
	MsgBaselineFailed  = "Failed to fetch geolocation"
	MsgSearchFailed    = "Failed to fetch geo for this IP"
	MsgMissingFields   = "Please enter email and password"
	MsgLoginFailed     = "Login failed"
	MsgInvalidLogin    = "Invalid credentials"
	MsgNoHistory       = "No search history yet"
	MsgNothingSelected = "No history entries selected"
)

var (
	// ErrInvalidIP is returned by Search for input that is not an IP address.
	ErrInvalidIP = errors.New(MsgInvalidIP)
	// ErrInactive is returned when a result arrives after Deactivate.
	ErrInactive = errors.New("service: view is no longer active")
)

// GeoLookup fetches a record for ip, or for the caller when ip is empty.
type GeoLookup interface {
	FetchGeo(ctx context.Context, ip string) (models.GeoRecord, error)
}

// HistoryStore is the subset of history.Store the page needs.
type HistoryStore interface {
	Entries() []models.HistoryEntry
	Add(ctx context.Context, ip string, geo models.GeoRecord) models.HistoryEntry
	Remove(ctx context.Context, ids ...string)
	Toggle(id string)
	ToggleAll()
	Selected() []string
	ClearSelection()
}

// Viewport is the map controller driven by the page.
type Viewport interface {
	Activate(container string)
	Update(lat, lon, label string)
	Deactivate()
}

// DisplayState is a snapshot of what the page shows.
type DisplayState struct {
	Baseline      models.MaybeRecord
	Current       models.MaybeRecord
	Input         string
	Error         string
	Loading       bool
	SearchLoading bool
}

// HomeService coordinates lookups, history and the map for one view.
type HomeService struct {
	lookup   GeoLookup
	history  HistoryStore
	viewport Viewport
	log      zerolog.Logger

	mu         sync.Mutex
	active     bool
	container  string
	generation uint64
	state      DisplayState
}

// NewHomeService wires the page coordinator.
func NewHomeService(lookup GeoLookup, history HistoryStore, viewport Viewport, logger zerolog.Logger) *HomeService {
	return &HomeService{lookup: lookup, history: history, viewport: viewport, log: logger}
}

// Activate mounts the map on container and fetches the baseline record.
// A failed lookup is reported in State().Error and returned; the view stays
// active and Search keeps working. Only ErrInactive means the view is gone.
func (s *HomeService) Activate(ctx context.Context, container string) error {
	s.mu.Lock()
	s.active = true
	s.container = container
	s.generation++
	gen := s.generation
	s.state.Loading = true
	s.mu.Unlock()

	s.viewport.Activate(container)

	record, err := s.lookup.FetchGeo(ctx, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if !s.currentLocked(gen) {
		s.log.Debug().Msg("service: discarding baseline result for inactive view")
		return ErrInactive
	}
	if err != nil {
		s.state.Error = userMessage(err, MsgBaselineFailed)
		s.log.Warn().Err(err).Msg("service: baseline lookup failed")
		return err
	}
	s.state.Baseline = models.Some(record)
	s.showLocked(models.Some(record))
	return nil
}

// Deactivate tears down the map and ignores any result still in flight.
func (s *HomeService) Deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()

	s.viewport.Deactivate()
}

// SetInput replaces the search input.
func (s *HomeService) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Input = text
}

// Search looks up the current input. Empty input shows the baseline again;
// invalid input is rejected before any request. A successful lookup is shown
// and recorded in history.
func (s *HomeService) Search(ctx context.Context) error {
	s.mu.Lock()
	ip := strings.TrimSpace(s.state.Input)
	s.state.Error = ""

	if ip == "" {
		s.showLocked(s.state.Baseline)
		s.mu.Unlock()
		return nil
	}
	if !validation.IsValidIP(ip) {
		s.state.Error = MsgInvalidIP
		s.mu.Unlock()
		return ErrInvalidIP
	}
	if !s.active {
		s.mu.Unlock()
		return ErrInactive
	}

	gen := s.generation
	s.state.SearchLoading = true
	s.mu.Unlock()

	record, err := s.lookup.FetchGeo(ctx, ip)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchLoading = false
	if !s.currentLocked(gen) {
		s.log.Debug().Str("ip", ip).Msg("service: discarding search result for inactive view")
		return ErrInactive
	}
	if err != nil {
		s.state.Error = userMessage(err, MsgSearchFailed)
		s.log.Warn().Err(err).Str("ip", ip).Msg("service: search lookup failed")
		return err
	}

	s.showLocked(models.Some(record))
	s.history.Add(ctx, ip, record)
	return nil
}

// ClearInput empties the input and shows the baseline.
func (s *HomeService) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Input = ""
	s.state.Error = ""
	s.showLocked(s.state.Baseline)
}

// SelectEntry shows a history entry and puts its address in the input.
func (s *HomeService) SelectEntry(entry models.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Input = entry.IP
	s.state.Error = ""
	s.showLocked(models.Some(entry.GeoData))
}

// ToggleSelect flips the selection of one history entry.
func (s *HomeService) ToggleSelect(id string) {
	s.history.Toggle(id)
}

// ToggleSelectAll selects every entry, or none if all were selected.
func (s *HomeService) ToggleSelectAll() {
	s.history.ToggleAll()
}

// DeleteSelected removes the selected entries. When the entry matching the
// displayed record (by ip) is among them, the display reverts to the baseline
// and the input is cleared. It returns the number of entries removed.
func (s *HomeService) DeleteSelected(ctx context.Context) int {
	ids := s.history.Selected()
	if len(ids) == 0 {
		return 0
	}

	s.mu.Lock()
	current := s.state.Current
	s.mu.Unlock()

	revert := false
	if currentIP := current.IP(); current.IsSome() {
		for _, e := range s.history.Entries() {
			if e.GeoData.IP != currentIP {
				continue
			}
			for _, id := range ids {
				if id == e.ID {
					revert = true
				}
			}
			break
		}
	}

	s.history.Remove(ctx, ids...)
	s.history.ClearSelection()

	if revert {
		s.mu.Lock()
		s.showLocked(s.state.Baseline)
		s.state.Input = ""
		s.mu.Unlock()
	}
	return len(ids)
}

// State returns a snapshot of the display.
func (s *HomeService) State() DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *HomeService) currentLocked(gen uint64) bool {
	return s.active && s.generation == gen
}

// showLocked sets the displayed record and pushes its coordinates to the map.
// A record without coordinates tears the map down so no stale marker remains;
// the viewport is remounted empty and recreated on the next Update.
func (s *HomeService) showLocked(record models.MaybeRecord) {
	s.state.Current = record
	if !s.active {
		return
	}
	if r, ok := record.Get(); ok {
		if lat, lon, ok := r.Coordinates(); ok {
			s.viewport.Update(lat, lon, r.Label())
			return
		}
	}
	s.viewport.Deactivate()
	s.viewport.Activate(s.container)
}

// userMessage returns the server's message for a rejected request and
// fallback for anything else, so transport and wrapper text stays in the log.
func userMessage(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
