package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/migration"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()
	db, err := database.OpenDSN(ctx, database.NewSQLiteDialect(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migration.RunMigrations(ctx, db, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedEvent(t *testing.T, db *database.DB, name string) models.Event {
	t.Helper()
	evt, err := NewEventRepository(db).CreateEvent(context.Background(), models.Event{Name: name})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return evt
}

func TestEventRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	starts := time.Date(2024, 9, 14, 17, 0, 0, 0, time.UTC)
	created, err := repo.CreateEvent(ctx, models.Event{Name: "  Wedding  ", Location: "Lisbon", StartsAt: &starts})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if created.ID == "" || created.Name != "Wedding" {
		t.Fatalf("created = %+v", created)
	}

	got, err := repo.GetEvent(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Name != "Wedding" || got.Location != "Lisbon" || got.StartsAt == nil || !got.StartsAt.Equal(starts) {
		t.Errorf("GetEvent = %+v", got)
	}

	if _, err := repo.GetEvent(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetEvent(missing) = %v, want sql.ErrNoRows", err)
	}
	if _, err := repo.CreateEvent(ctx, models.Event{Name: " "}); err == nil {
		t.Error("CreateEvent without name should fail")
	}

	events, err := repo.ListEvents(ctx)
	if err != nil || len(events) != 1 {
		t.Errorf("ListEvents = %v, %v", events, err)
	}
}

func TestGuestRepositoryCheckIn(t *testing.T) {
	db := openTestDB(t)
	evt := seedEvent(t, db, "Gala")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	g, err := repo.CreateGuest(ctx, models.Guest{EventID: evt.ID, Name: "Ada Lovelace", Email: "ada@example.com", RSVPStatus: models.RSVPConfirmed})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	missing, err := repo.GetGuest(ctx, evt.ID, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("GetGuest(nobody) = %v, %v; want nil, nil", missing, err)
	}
	otherEvent, err := repo.GetGuest(ctx, "other-event", g.ID)
	if err != nil || otherEvent != nil {
		t.Fatalf("GetGuest(other event) = %v, %v; want nil, nil", otherEvent, err)
	}

	first := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	updated, err := repo.SetCheckedIn(ctx, evt.ID, g.ID, true, first)
	if err != nil {
		t.Fatalf("SetCheckedIn(true): %v", err)
	}
	if !updated.CheckedIn || updated.CheckInTime == nil || !updated.CheckInTime.Equal(first) {
		t.Fatalf("after check in: %+v", updated)
	}

	// repeated check-in keeps the first time
	updated, err = repo.SetCheckedIn(ctx, evt.ID, g.ID, true, first.Add(time.Hour))
	if err != nil {
		t.Fatalf("SetCheckedIn(true) again: %v", err)
	}
	if !updated.CheckInTime.Equal(first) {
		t.Errorf("check-in time = %v, want %v", updated.CheckInTime, first)
	}

	updated, err = repo.SetCheckedIn(ctx, evt.ID, g.ID, false, first.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("SetCheckedIn(false): %v", err)
	}
	if updated.CheckedIn || updated.CheckInTime != nil || !updated.Consistent() {
		t.Errorf("after check out: %+v", updated)
	}

	if _, err := repo.SetCheckedIn(ctx, "other-event", g.ID, true, first); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SetCheckedIn(other event) = %v, want sql.ErrNoRows", err)
	}
}

func TestGuestRepositorySearch(t *testing.T) {
	db := openTestDB(t)
	evt := seedEvent(t, db, "Gala")
	other := seedEvent(t, db, "Brunch")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	seed := []models.Guest{
		{EventID: evt.ID, Name: "Ada Lovelace", Email: "ada@example.com", RSVPStatus: models.RSVPConfirmed},
		{EventID: evt.ID, Name: "Grace Hopper", Email: "grace@navy.mil", RSVPStatus: models.RSVPDeclined},
		{EventID: evt.ID, Name: "Alan Turing", Email: "alan@example.com"},
		{EventID: other.ID, Name: "Ada Other", Email: "ada2@example.com", RSVPStatus: models.RSVPConfirmed},
	}
	var ids []string
	for _, g := range seed {
		created, err := repo.CreateGuest(ctx, g)
		if err != nil {
			t.Fatalf("CreateGuest: %v", err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := repo.SetCheckedIn(ctx, evt.ID, ids[0], true, time.Now()); err != nil {
		t.Fatalf("SetCheckedIn: %v", err)
	}

	checked := true
	tests := []struct {
		name   string
		filter models.GuestFilter
		want   int
	}{
		{"all", models.GuestFilter{}, 3},
		{"query name", models.GuestFilter{Query: "ada"}, 1},
		{"query email", models.GuestFilter{Query: "EXAMPLE.COM"}, 2},
		{"status", models.GuestFilter{Status: models.RSVPDeclined}, 1},
		{"checked in", models.GuestFilter{CheckedIn: &checked}, 1},
		{"no match", models.GuestFilter{Query: "zzz"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchGuests(ctx, evt.ID, tt.filter)
			if err != nil {
				t.Fatalf("SearchGuests: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchGuests(%+v) = %d guests, want %d", tt.filter, len(got), tt.want)
			}
			for _, g := range got {
				if !tt.filter.Matches(g) {
					t.Errorf("guest %s does not match filter", g.Name)
				}
			}
		})
	}
}

func TestGuestRepositoryUpdateRSVP(t *testing.T) {
	db := openTestDB(t)
	evt := seedEvent(t, db, "Gala")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	g, err := repo.CreateGuest(ctx, models.Guest{EventID: evt.ID, Name: "Ada"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if g.RSVPStatus != models.RSVPPending {
		t.Errorf("default status = %v", g.RSVPStatus)
	}
	updated, err := repo.UpdateRSVP(ctx, evt.ID, g.ID, models.RSVPDeclined)
	if err != nil {
		t.Fatalf("UpdateRSVP: %v", err)
	}
	if updated.RSVPStatus != models.RSVPDeclined {
		t.Errorf("status = %v", updated.RSVPStatus)
	}
	if _, err := repo.UpdateRSVP(ctx, evt.ID, g.ID, "maybe"); err == nil {
		t.Error("UpdateRSVP with invalid status should fail")
	}
	if _, err := repo.UpdateRSVP(ctx, evt.ID, "nobody", models.RSVPConfirmed); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdateRSVP(nobody) = %v, want sql.ErrNoRows", err)
	}
}

func TestOperatorRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewOperatorRepository(db)
	ctx := context.Background()

	op, err := repo.CreateOperator(ctx, " Desk@Example.com ", "hunter22", "Front desk", []models.Role{models.RoleStaff})
	if err != nil {
		t.Fatalf("CreateOperator: %v", err)
	}
	if op.Email != "desk@example.com" || !models.HasAtLeast(op.Roles, models.RoleStaff) {
		t.Fatalf("operator = %+v", op)
	}

	authed, err := repo.AuthenticateOperator(ctx, "desk@example.com", "hunter22")
	if err != nil {
		t.Fatalf("AuthenticateOperator: %v", err)
	}
	if authed.ID != op.ID || models.HighestRole(authed.Roles) != models.RoleStaff {
		t.Errorf("authenticated = %+v", authed)
	}

	if _, err := repo.AuthenticateOperator(ctx, "desk@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := repo.AuthenticateOperator(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
	if _, err := repo.CreateOperator(ctx, "x@example.com", "pw", "", []models.Role{"owner"}); err == nil {
		t.Error("CreateOperator with unknown role should fail")
	}
}

func TestActivityRepository(t *testing.T) {
	db := openTestDB(t)
	evt := seedEvent(t, db, "Gala")
	repo := NewActivityRepository(db)
	ctx := context.Background()

	guestID := "g1"
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, CreateActivityParams{
			EventID:  evt.ID,
			GuestID:  &guestID,
			Kind:     models.ActivityScanCheckedIn,
			Message:  "Ada checked in",
			Metadata: map[string]interface{}{"n": i},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	recent, err := repo.ListRecent(ctx, evt.ID, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("ListRecent returned %d, want 2", len(recent))
	}
	if recent[0].Severity != models.ActivitySeverityInfo || recent[0].GuestID == nil || *recent[0].GuestID != "g1" {
		t.Errorf("activity = %+v", recent[0])
	}
	if len(recent[0].Metadata) == 0 {
		t.Error("metadata should round-trip")
	}
	if recent[0].CreatedAt.Before(recent[1].CreatedAt) {
		t.Error("activities should be newest first")
	}
}
