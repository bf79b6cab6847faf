package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/repo"
	"github.com/moonwavetravel/backend/internal/service"
	"github.com/moonwavetravel/backend/internal/storage"
)

// Hand-written test doubles: each method is a function field, set only the
// ones a test needs. Calling an unset one panics, which fails the test loudly.

type mockTripRepo struct {
	create             func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	update             func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	updateCover        func(ctx context.Context, id, owner uuid.UUID, url, path string) (domain.Trip, error)
	delete             func(ctx context.Context, id, owner uuid.UUID) error
	addCollaborator    func(ctx context.Context, tripID, userID uuid.UUID) error
	removeCollaborator func(ctx context.Context, tripID, userID uuid.UUID) error
	tree               func(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error)
	listTrees          func(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error)
	listPublic         func(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) UpdateCover(ctx context.Context, id, owner uuid.UUID, url, path string) (domain.Trip, error) {
	return m.updateCover(ctx, id, owner, url, path)
}
func (m *mockTripRepo) Delete(ctx context.Context, id, owner uuid.UUID) error {
	return m.delete(ctx, id, owner)
}
func (m *mockTripRepo) AddCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	return m.addCollaborator(ctx, tripID, userID)
}
func (m *mockTripRepo) RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	return m.removeCollaborator(ctx, tripID, userID)
}
func (m *mockTripRepo) Tree(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error) {
	return m.tree(ctx, id)
}
func (m *mockTripRepo) ListTrees(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error) {
	return m.listTrees(ctx, viewer)
}
func (m *mockTripRepo) ListPublic(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error) {
	return m.listPublic(ctx, p)
}

type mockDayRepo struct {
	syncRange    func(ctx context.Context, tripID uuid.UUID, start time.Time, count int) ([]domain.Day, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Day, error)
	update       func(ctx context.Context, day domain.Day) (domain.Day, error)
	detail       func(ctx context.Context, id uuid.UUID) (domain.DayDetail, error)
	owner        func(ctx context.Context, id uuid.UUID) (uuid.UUID, uuid.UUID, error)
	deleteByTrip func(ctx context.Context, tripID uuid.UUID) (int64, error)
}

func (m *mockDayRepo) SyncRange(ctx context.Context, tripID uuid.UUID, start time.Time, count int) ([]domain.Day, error) {
	return m.syncRange(ctx, tripID, start, count)
}
func (m *mockDayRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Day, error) {
	return m.getByID(ctx, id)
}
func (m *mockDayRepo) Update(ctx context.Context, day domain.Day) (domain.Day, error) {
	return m.update(ctx, day)
}
func (m *mockDayRepo) Detail(ctx context.Context, id uuid.UUID) (domain.DayDetail, error) {
	return m.detail(ctx, id)
}
func (m *mockDayRepo) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	return m.owner(ctx, id)
}
func (m *mockDayRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	return m.deleteByTrip(ctx, tripID)
}

type mockPlanRepo struct {
	create       func(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	locate       func(ctx context.Context, id uuid.UUID) (repo.PlanLocation, error)
	update       func(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	reorder      func(ctx context.Context, dayID uuid.UUID, ids []uuid.UUID) error
	deleteByTrip func(ctx context.Context, tripID uuid.UUID) (int64, error)
}

func (m *mockPlanRepo) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	return m.create(ctx, plan)
}
func (m *mockPlanRepo) Locate(ctx context.Context, id uuid.UUID) (repo.PlanLocation, error) {
	return m.locate(ctx, id)
}
func (m *mockPlanRepo) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	return m.update(ctx, plan)
}
func (m *mockPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockPlanRepo) Reorder(ctx context.Context, dayID uuid.UUID, ids []uuid.UUID) error {
	return m.reorder(ctx, dayID, ids)
}
func (m *mockPlanRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	return m.deleteByTrip(ctx, tripID)
}

type mockCollaboratorRepo struct {
	create       func(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Collaborator, error)
	listByTrip   func(ctx context.Context, tripID uuid.UUID) ([]domain.Collaborator, error)
	accept       func(ctx context.Context, id, userID uuid.UUID) (domain.Collaborator, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	deleteByTrip func(ctx context.Context, tripID uuid.UUID) (int64, error)
}

func (m *mockCollaboratorRepo) Create(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	return m.create(ctx, c)
}
func (m *mockCollaboratorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Collaborator, error) {
	return m.getByID(ctx, id)
}
func (m *mockCollaboratorRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Collaborator, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockCollaboratorRepo) Accept(ctx context.Context, id, userID uuid.UUID) (domain.Collaborator, error) {
	return m.accept(ctx, id, userID)
}
func (m *mockCollaboratorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockCollaboratorRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	return m.deleteByTrip(ctx, tripID)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.TripRepo         = (*mockTripRepo)(nil)
	_ repo.DayRepo          = (*mockDayRepo)(nil)
	_ repo.PlanRepo         = (*mockPlanRepo)(nil)
	_ repo.CollaboratorRepo = (*mockCollaboratorRepo)(nil)
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) tables() []domain.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Table, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Table
	}
	return out
}

var _ service.Publisher = (*recordingPublisher)(nil)

type mockStore struct {
	put    func(ctx context.Context, prefix string, data []byte) (storage.Object, error)
	delete func(ctx context.Context, path string) error
}

func (m *mockStore) Put(ctx context.Context, prefix string, data []byte) (storage.Object, error) {
	return m.put(ctx, prefix, data)
}
func (m *mockStore) Delete(ctx context.Context, path string) error {
	return m.delete(ctx, path)
}

var _ storage.Store = (*mockStore)(nil)

// captureLogger returns a JSON logger writing to the returned buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
