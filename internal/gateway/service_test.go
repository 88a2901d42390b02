package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purrsec/Hackathon-parrotAI/internal/flight"
	"github.com/purrsec/Hackathon-parrotAI/internal/llm/providers"
	"github.com/purrsec/Hackathon-parrotAI/internal/mission"
	"github.com/purrsec/Hackathon-parrotAI/internal/poi"
)

const servicePlanJSON = `{"missionId":"svc-1","segments":[` +
	`{"type":"takeoff"},` +
	`{"type":"move_to","latitude":48.87895,"longitude":2.36754,"altitude":60},` +
	`{"type":"return_to_home"},{"type":"land"}],` +
	`"safety":{"geofence":{"enabled":true},"maxAltitudeMeters":80}}`

func newTestService(t *testing.T, sim *flight.Simulator) *MissionService {
	t.Helper()

	provider := providers.NewMockProvider("Yes, I can inspect the site.", servicePlanJSON)
	registry := poi.NewRegistry([]poi.Point{
		{Name: "Water Tower", Coordinates: poi.Coordinates{Latitude: 48.87895, Longitude: 2.36754}},
	})

	gen := mission.NewGenerator(provider, registry)
	val := mission.NewValidator()
	gate := mission.NewGate()
	exec := mission.NewExecutor(sim,
		mission.WithExecutorConfig(mission.ExecutorConfig{CommandRateHz: 1000}))

	return NewMissionService(gen, val, gate, exec)
}

func TestService_PlanConfirmExecute(t *testing.T) {
	sim := flight.NewSimulator()
	svc := newTestService(t, sim)

	proposal, err := svc.Plan(context.Background(), "inspect the site")
	require.NoError(t, err)
	assert.Equal(t, "svc-1", proposal.MissionID)
	assert.Equal(t, "Yes, I can inspect the site.", proposal.Understanding)

	pending, _, _ := svc.Status()
	assert.Equal(t, 1, pending)

	require.NoError(t, svc.Confirm(proposal.MissionID, false))

	require.Eventually(t, func() bool {
		report, err := svc.Report(proposal.MissionID)
		return err == nil && report.Status != mission.ReportStatusPending
	}, 5*time.Second, 10*time.Millisecond)

	report, err := svc.Report(proposal.MissionID)
	require.NoError(t, err)
	assert.Equal(t, mission.ReportStatusCompleted, report.Status)
	assert.Len(t, report.ExecutedSegments, 4)

	require.Eventually(t, func() bool {
		return len(svc.History()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	entry := svc.History()[0]
	assert.Equal(t, "svc-1", entry.MissionID)
	assert.Equal(t, "inspect the site", entry.Request)

	assert.Equal(t, 1, sim.CommandCount(flight.CmdTakeoff))
	assert.False(t, sim.Connected())
}

func TestService_ConfirmIsSingleShot(t *testing.T) {
	sim := flight.NewSimulator()
	svc := newTestService(t, sim)

	proposal, err := svc.Plan(context.Background(), "inspect the site")
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(proposal.MissionID, false))
	assert.ErrorIs(t, svc.Confirm(proposal.MissionID, false), mission.ErrNoSuchPending)

	require.Eventually(t, func() bool {
		report, err := svc.Report(proposal.MissionID)
		return err == nil && report.Status != mission.ReportStatusPending
	}, 5*time.Second, 10*time.Millisecond)

	// Exactly one execution reached the vehicle.
	assert.Equal(t, 1, sim.CommandCount(flight.CmdTakeoff))
}

func TestService_Reject(t *testing.T) {
	sim := flight.NewSimulator()
	svc := newTestService(t, sim)

	proposal, err := svc.Plan(context.Background(), "inspect the site")
	require.NoError(t, err)

	require.NoError(t, svc.Reject(proposal.MissionID))
	assert.ErrorIs(t, svc.Confirm(proposal.MissionID, false), mission.ErrNoSuchPending)
	assert.Empty(t, sim.Commands())
}

func TestService_DryRunConfirm(t *testing.T) {
	sim := flight.NewSimulator()
	svc := newTestService(t, sim)

	proposal, err := svc.Plan(context.Background(), "inspect the site")
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(proposal.MissionID, true))

	require.Eventually(t, func() bool {
		report, err := svc.Report(proposal.MissionID)
		return err == nil && report.Status == mission.ReportStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	assert.Empty(t, sim.Commands())
}

func TestService_UnknownReport(t *testing.T) {
	svc := newTestService(t, flight.NewSimulator())

	_, err := svc.Report("nope")
	assert.Error(t, err)
}
