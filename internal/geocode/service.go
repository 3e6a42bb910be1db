package geocode

import (
	"context"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/events"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
)

// AppointmentStore is the slice of the appointments repository geocoding
// depends on.
type AppointmentStore interface {
	ListWithoutCoordinates(ctx context.Context, limit int) ([]apptrepo.Agendamento, error)
	UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lng float64) error
}

// Service geocodes appointment addresses. All work is best-effort: a failed
// lookup leaves the appointment without coordinates until the next batch.
type Service struct {
	geocoder  Geocoder
	store     AppointmentStore
	batchSize int
	pause     time.Duration
	log       *logger.Logger
}

// NewService creates a geocoding service. The batch size and pause throttle
// calls against the external provider's rate limit.
func NewService(geocoder Geocoder, store AppointmentStore, batchSize int, pause time.Duration, log *logger.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Service{
		geocoder:  geocoder,
		store:     store,
		batchSize: batchSize,
		pause:     pause,
		log:       log,
	}
}

// GeocodeOne resolves and stores coordinates for a single appointment.
func (s *Service) GeocodeOne(ctx context.Context, id uuid.UUID, address string) bool {
	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.log.BestEffortFailure("geocode lookup", err)
		return false
	}
	if coords == nil {
		return false
	}

	if err := s.store.UpdateCoordinates(ctx, id, coords.Latitude, coords.Longitude); err != nil {
		s.log.BestEffortFailure("geocode coordinate update", err)
		return false
	}

	return true
}

// ProcessPending geocodes appointments without coordinates in chunks,
// pausing between chunks. Returns how many appointments got coordinates.
func (s *Service) ProcessPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.store.ListWithoutCoordinates(ctx, limit)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for start := 0; start < len(pending); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}

		for _, a := range pending[start:end] {
			if s.GeocodeOne(ctx, a.ID, a.Address) {
				resolved++
			}
		}

		if end < len(pending) && s.pause > 0 {
			select {
			case <-ctx.Done():
				return resolved, ctx.Err()
			case <-time.After(s.pause):
			}
		}
	}

	return resolved, nil
}

// RegisterEventHandlers geocodes new appointments as they arrive.
func (s *Service) RegisterEventHandlers(bus events.Bus) {
	bus.Subscribe(events.EventNameAppointmentCreated, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.AppointmentCreated)
		if !ok || e.Address == "" {
			return nil
		}
		s.GeocodeOne(ctx, e.AppointmentID, e.Address)
		return nil
	}))
}
