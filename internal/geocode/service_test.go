package geocode

import (
	"context"
	"testing"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	coords *Coordinates
	err    error
	calls  []string
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (*Coordinates, error) {
	g.calls = append(g.calls, address)
	return g.coords, g.err
}

func seedWithoutCoords(store *apptrepo.Memory, address string) apptrepo.Agendamento {
	a := apptrepo.Agendamento{
		ID:          uuid.New(),
		ClientName:  "Cliente",
		ClientPhone: "+5511999990000",
		Address:     address,
	}
	store.Seed(a)
	return a
}

func TestGeocodeOne(t *testing.T) {
	store := apptrepo.NewMemory()
	a := seedWithoutCoords(store, "Rua A, 10")
	geocoder := &stubGeocoder{coords: &Coordinates{Latitude: -23.55, Longitude: -46.63}}
	svc := NewService(geocoder, store, 5, 0, logger.New("test"))

	require.True(t, svc.GeocodeOne(context.Background(), a.ID, a.Address))

	stored, err := store.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Latitude)
	assert.InDelta(t, -23.55, *stored.Latitude, 0.001)
	require.NotNil(t, stored.Longitude)
	assert.InDelta(t, -46.63, *stored.Longitude, 0.001)
}

func TestGeocodeOne_LookupFailureIsNonFatal(t *testing.T) {
	store := apptrepo.NewMemory()
	a := seedWithoutCoords(store, "Rua A, 10")
	svc := NewService(&stubGeocoder{err: apperr.Internal("provider down")}, store, 5, 0, logger.New("test"))

	assert.False(t, svc.GeocodeOne(context.Background(), a.ID, a.Address))

	stored, err := store.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Latitude)
}

func TestProcessPending(t *testing.T) {
	store := apptrepo.NewMemory()
	for i := 0; i < 7; i++ {
		seedWithoutCoords(store, "Rua A, 10")
	}
	geocoder := &stubGeocoder{coords: &Coordinates{Latitude: -23.55, Longitude: -46.63}}
	svc := NewService(geocoder, store, 5, 0, logger.New("test"))

	resolved, err := svc.ProcessPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 7, resolved)
	assert.Len(t, geocoder.calls, 7)

	remaining, err := store.ListWithoutCoordinates(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestProcessPending_NoMatchLeavesPending(t *testing.T) {
	store := apptrepo.NewMemory()
	seedWithoutCoords(store, "Endereço inexistente")
	svc := NewService(&stubGeocoder{coords: nil}, store, 5, 0, logger.New("test"))

	resolved, err := svc.ProcessPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, resolved)

	remaining, err := store.ListWithoutCoordinates(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
