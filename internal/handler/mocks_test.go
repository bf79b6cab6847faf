package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/moonwavetravel/backend/internal/auth"
	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/handler"
	"github.com/moonwavetravel/backend/internal/middleware"
	"github.com/moonwavetravel/backend/internal/realtime"
)

// Hand-written test doubles. Set only the method fields your test needs;
// calling an unset one panics, which fails the test loudly.

type mockTripServicer struct {
	tree        func(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error)
	listTrees   func(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error)
	listPublic  func(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error)
	create      func(ctx context.Context, owner uuid.UUID, in domain.TripInput) (domain.Trip, error)
	update      func(ctx context.Context, actor, id uuid.UUID, in domain.TripInput) (domain.Trip, error)
	delete      func(ctx context.Context, actor, id uuid.UUID) error
	setCover    func(ctx context.Context, actor, id uuid.UUID, data []byte) (domain.Trip, error)
	removeCover func(ctx context.Context, actor, id uuid.UUID) (domain.Trip, error)
}

func (m *mockTripServicer) Tree(ctx context.Context, id uuid.UUID) (domain.TripWithDays, error) {
	return m.tree(ctx, id)
}
func (m *mockTripServicer) ListTrees(ctx context.Context, viewer uuid.UUID) ([]domain.TripWithDays, error) {
	return m.listTrees(ctx, viewer)
}
func (m *mockTripServicer) ListPublic(ctx context.Context, p domain.PageRequest) ([]domain.Trip, int64, error) {
	return m.listPublic(ctx, p)
}
func (m *mockTripServicer) Create(ctx context.Context, owner uuid.UUID, in domain.TripInput) (domain.Trip, error) {
	return m.create(ctx, owner, in)
}
func (m *mockTripServicer) Update(ctx context.Context, actor, id uuid.UUID, in domain.TripInput) (domain.Trip, error) {
	return m.update(ctx, actor, id, in)
}
func (m *mockTripServicer) Delete(ctx context.Context, actor, id uuid.UUID) error {
	return m.delete(ctx, actor, id)
}
func (m *mockTripServicer) SetCover(ctx context.Context, actor, id uuid.UUID, data []byte) (domain.Trip, error) {
	return m.setCover(ctx, actor, id, data)
}
func (m *mockTripServicer) RemoveCover(ctx context.Context, actor, id uuid.UUID) (domain.Trip, error) {
	return m.removeCover(ctx, actor, id)
}

type mockDayServicer struct {
	detail func(ctx context.Context, id uuid.UUID) (domain.DayDetail, error)
	update func(ctx context.Context, actor, id uuid.UUID, in domain.DayInput) (domain.Day, error)
}

func (m *mockDayServicer) Detail(ctx context.Context, id uuid.UUID) (domain.DayDetail, error) {
	return m.detail(ctx, id)
}
func (m *mockDayServicer) Update(ctx context.Context, actor, id uuid.UUID, in domain.DayInput) (domain.Day, error) {
	return m.update(ctx, actor, id, in)
}

type mockPlanServicer struct {
	create  func(ctx context.Context, actor, dayID uuid.UUID, in domain.PlanInput) (domain.Plan, error)
	update  func(ctx context.Context, actor, id uuid.UUID, in domain.PlanInput) (domain.Plan, error)
	delete  func(ctx context.Context, actor, id uuid.UUID) error
	reorder func(ctx context.Context, actor, dayID uuid.UUID, ids []uuid.UUID) error
}

func (m *mockPlanServicer) Create(ctx context.Context, actor, dayID uuid.UUID, in domain.PlanInput) (domain.Plan, error) {
	return m.create(ctx, actor, dayID, in)
}
func (m *mockPlanServicer) Update(ctx context.Context, actor, id uuid.UUID, in domain.PlanInput) (domain.Plan, error) {
	return m.update(ctx, actor, id, in)
}
func (m *mockPlanServicer) Delete(ctx context.Context, actor, id uuid.UUID) error {
	return m.delete(ctx, actor, id)
}
func (m *mockPlanServicer) Reorder(ctx context.Context, actor, dayID uuid.UUID, ids []uuid.UUID) error {
	return m.reorder(ctx, actor, dayID, ids)
}

type mockCollaboratorServicer struct {
	list   func(ctx context.Context, viewer, tripID uuid.UUID) ([]domain.Collaborator, error)
	invite func(ctx context.Context, actor, tripID uuid.UUID, in domain.CollaboratorInput) (domain.Collaborator, error)
	accept func(ctx context.Context, userID uuid.UUID, email string, id uuid.UUID) (domain.Collaborator, error)
	remove func(ctx context.Context, actor, id uuid.UUID) error
}

func (m *mockCollaboratorServicer) List(ctx context.Context, viewer, tripID uuid.UUID) ([]domain.Collaborator, error) {
	return m.list(ctx, viewer, tripID)
}
func (m *mockCollaboratorServicer) Invite(ctx context.Context, actor, tripID uuid.UUID, in domain.CollaboratorInput) (domain.Collaborator, error) {
	return m.invite(ctx, actor, tripID, in)
}
func (m *mockCollaboratorServicer) Accept(ctx context.Context, userID uuid.UUID, email string, id uuid.UUID) (domain.Collaborator, error) {
	return m.accept(ctx, userID, email, id)
}
func (m *mockCollaboratorServicer) Remove(ctx context.Context, actor, id uuid.UUID) error {
	return m.remove(ctx, actor, id)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TripServicer         = (*mockTripServicer)(nil)
	_ handler.DayServicer          = (*mockDayServicer)(nil)
	_ handler.PlanServicer         = (*mockPlanServicer)(nil)
	_ handler.CollaboratorServicer = (*mockCollaboratorServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

const testSecret = "test-secret"

// deps bundles the mocks a test wires into the router. Nil members are
// replaced with empty mocks.
type deps struct {
	trips         *mockTripServicer
	days          *mockDayServicer
	plans         *mockPlanServicer
	collaborators *mockCollaboratorServicer
	events        *realtime.Hub
	limiter       *middleware.RateLimiter
	checks        map[string]handler.HealthCheck
}

// newHTTPHandler builds the production router around the given mocks.
func newHTTPHandler(t *testing.T, d deps) http.Handler {
	t.Helper()
	if d.trips == nil {
		d.trips = &mockTripServicer{}
	}
	if d.days == nil {
		d.days = &mockDayServicer{}
	}
	if d.plans == nil {
		d.plans = &mockPlanServicer{}
	}
	if d.collaborators == nil {
		d.collaborators = &mockCollaboratorServicer{}
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hd := handler.Deps{
		Trips:         d.trips,
		Days:          d.days,
		Plans:         d.plans,
		Collaborators: d.collaborators,
		Translator:    errmsg.NewTranslator(language.Korean),
		Logger:        logger,
	}
	if d.events != nil {
		hd.Events = d.events
	}
	hd.Checks = d.checks
	srv := handler.NewServer(hd)
	t.Cleanup(func() { _ = srv.Close() })

	return handler.NewRouter(srv, handler.RouterOptions{
		Logger:       logger,
		CORSOrigins:  []string{"http://localhost:3000"},
		JWTSecret:    testSecret,
		MaxBodyBytes: 1 << 20,
		Limiter:      d.limiter,
		OpenAPI:      []byte("openapi: 3.0.3\n"),
	})
}

type user struct {
	id    uuid.UUID
	email string
}

func newUser() user {
	id := uuid.New()
	return user{id: id, email: id.String()[:8] + "@example.com"}
}

func (u user) token(t *testing.T) string {
	t.Helper()
	tok, err := auth.GenerateToken(u.id, u.email, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

// request builds a request; a zero user makes it anonymous.
func request(t *testing.T, method, target string, body any, as user) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as.id != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+as.token(t))
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code     string            `json:"code"`
		Category string            `json:"category"`
		Message  string            `json:"message"`
		Fields   map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(s string) *domain.ClockTime {
	c, err := domain.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return &c
}

func ptr[T any](v T) *T { return &v }

// tripFixture returns a three-day trip owned by owner with its days and
// plans deliberately out of order.
func tripFixture(owner uuid.UUID, public bool) domain.TripWithDays {
	tripID := uuid.New()
	day1, day2 := uuid.New(), uuid.New()
	now := time.Now().UTC()
	return domain.TripWithDays{
		Trip: domain.Trip{
			ID:          tripID,
			OwnerID:     owner,
			Title:       "Jeju spring",
			Destination: "Jeju",
			StartDate:   date(2025, 4, 1),
			EndDate:     date(2025, 4, 2),
			IsPublic:    public,
			Status:      domain.TripPlanning,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Days: []domain.DayWithPlans{
			{Day: domain.Day{ID: day2, TripID: tripID, DayNumber: 2, Date: date(2025, 4, 2)}},
			{
				Day: domain.Day{ID: day1, TripID: tripID, DayNumber: 1, Date: date(2025, 4, 1)},
				Plans: []domain.Plan{
					{ID: uuid.New(), DayID: day1, PlaceName: "dinner", PlanType: domain.PlanRestaurant, OrderIndex: 2, PlannedTime: clock("19:00"), Budget: ptr(40000.0)},
					{ID: uuid.New(), DayID: day1, PlaceName: "museum", PlanType: domain.PlanSightseeing, OrderIndex: 0, PlannedTime: clock("10:00"), DurationMinutes: ptr(90)},
					{ID: uuid.New(), DayID: day1, PlaceName: "walk", PlanType: domain.PlanOthers, OrderIndex: 1},
				},
			},
		},
	}
}
