package consult

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/psconsult/psconsult/internal/platform/apperr"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

// -- Mocks --

type mockRepo struct {
	items   map[uuid.UUID]*Consult
	byToken map[string]*Consult
	seqs    map[int]int
	order   []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		items:   make(map[uuid.UUID]*Consult),
		byToken: make(map[string]*Consult),
		seqs:    make(map[int]int),
	}
}

func (m *mockRepo) NextSequence(_ context.Context, year int) (int, error) {
	m.seqs[year]++
	return m.seqs[year], nil
}

func (m *mockRepo) Insert(_ context.Context, c *Consult) error {
	if c.ClientToken != nil {
		if _, taken := m.byToken[*c.ClientToken]; taken {
			return ErrDuplicateToken
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.items[c.ID] = c
	m.order = append(m.order, c.ID)
	if c.ClientToken != nil {
		m.byToken[*c.ClientToken] = c
	}
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Consult, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("consult not found")
	}
	return c, nil
}

func (m *mockRepo) GetByConsultID(_ context.Context, consultID string) (*Consult, error) {
	for _, c := range m.items {
		if c.ConsultID == consultID {
			return c, nil
		}
	}
	return nil, apperr.NotFound("consult not found")
}

func (m *mockRepo) GetByClientToken(_ context.Context, token string) (*Consult, error) {
	c, ok := m.byToken[token]
	if !ok {
		return nil, apperr.NotFound("consult not found")
	}
	return c, nil
}

func (m *mockRepo) Update(_ context.Context, c *Consult) error {
	m.items[c.ID] = c
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Consult, int, error) {
	var out []*Consult
	for _, id := range m.order {
		c := m.items[id]
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Urgency != "" && c.Urgency != f.Urgency {
			continue
		}
		if f.CreatedBy != nil && (c.CreatedBy == nil || *c.CreatedBy != *f.CreatedBy) {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

type mockNotifier struct {
	fanouts []fanoutCall
}

type fanoutCall struct {
	recipients []uuid.UUID
	consultID  string
	title      string
	message    string
}

func (m *mockNotifier) Fanout(_ context.Context, recipients []uuid.UUID, consultID *string, title, message string) int {
	call := fanoutCall{recipients: recipients, title: title, message: message}
	if consultID != nil {
		call.consultID = *consultID
	}
	m.fanouts = append(m.fanouts, call)
	return len(recipients)
}

type mockAuditor struct {
	entries []auditCall
}

type auditCall struct {
	action  string
	entity  string
	details string
}

func (m *mockAuditor) Record(_ context.Context, _ *auth.Actor, action, entityType string, entityID, details *string) {
	call := auditCall{action: action}
	if entityID != nil {
		call.entity = *entityID
	}
	if details != nil {
		call.details = *details
	}
	m.entries = append(m.entries, call)
}

type mockTeam struct {
	ids []uuid.UUID
}

func (m *mockTeam) ActiveTeamMemberIDs(_ context.Context) ([]uuid.UUID, error) {
	return m.ids, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	notifier *mockNotifier
	auditor  *mockAuditor
	team     *mockTeam
}

func newFixture() *fixture {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	auditor := &mockAuditor{}
	team := &mockTeam{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	svc := NewService(repo, notifier, auditor, team, passthroughTx, zerolog.Nop())
	return &fixture{svc: svc, repo: repo, notifier: notifier, auditor: auditor, team: team}
}

func registrar() *auth.Actor {
	return &auth.Actor{ID: uuid.New(), Username: "reg1", FullName: "Reg One", Role: auth.RoleRegistrar}
}

func invitingUnit() *auth.Actor {
	return &auth.Actor{ID: uuid.New(), Username: "ed1", Role: auth.RoleInvitingUnit}
}

// -- Create --

func TestCreateAllocatesSequentialIDs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	year := time.Now().Year()

	first, wasNew, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil || !wasNew {
		t.Fatalf("create: %v, wasNew=%v", err, wasNew)
	}
	second, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if first.ConsultID != FormatConsultID(year, 1) {
		t.Errorf("first id = %q", first.ConsultID)
	}
	if second.ConsultID != FormatConsultID(year, 2) {
		t.Errorf("second id = %q", second.ConsultID)
	}
	if first.Status != StatusPending {
		t.Errorf("new consult status = %q, want pending", first.Status)
	}
}

func TestCreateRestartsSequencePerYear(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.now = func() time.Time { return time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC) }
	dec, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.svc.now = func() time.Time { return time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC) }
	jan, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if dec.ConsultID != "PSC-2025-00001" || jan.ConsultID != "PSC-2026-00001" {
		t.Errorf("ids = %q, %q; each year must start at 1", dec.ConsultID, jan.ConsultID)
	}
}

func TestCreateRejectsInvalidWithoutSideEffects(t *testing.T) {
	f := newFixture()
	bad := validConsult()
	bad.Age = 200

	_, _, err := f.svc.Create(context.Background(), nil, bad, nil)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.repo.items) != 0 || len(f.notifier.fanouts) != 0 || len(f.auditor.entries) != 0 {
		t.Error("rejected submission must leave no trace")
	}
}

func TestCreateDuplicateTokenSuppressed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	token := "device1-170001"

	first, wasNew, err := f.svc.Create(ctx, nil, validConsult(), &token)
	if err != nil || !wasNew {
		t.Fatalf("first create: %v, wasNew=%v", err, wasNew)
	}

	again, wasNew, err := f.svc.Create(ctx, nil, validConsult(), &token)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if wasNew {
		t.Error("duplicate token must not create a new consult")
	}
	if again.ConsultID != first.ConsultID {
		t.Errorf("duplicate returned %q, want original %q", again.ConsultID, first.ConsultID)
	}
	if len(f.repo.items) != 1 {
		t.Errorf("stored consults = %d, want 1", len(f.repo.items))
	}
	if len(f.notifier.fanouts) != 1 {
		t.Errorf("fanouts = %d; duplicates must not re-notify", len(f.notifier.fanouts))
	}
	if len(f.auditor.entries) != 1 {
		t.Errorf("audit entries = %d; duplicates must not re-audit", len(f.auditor.entries))
	}
}

func TestCreateDuplicateTokenRace(t *testing.T) {
	// A concurrent writer lands the token between the pre-check and the
	// insert; the unique index turns the insert into a duplicate ack.
	f := newFixture()
	ctx := context.Background()
	token := "device1-170002"

	winner := validConsult()
	winner.ConsultID = "PSC-2026-00001"
	winner.ClientToken = &token

	checked := false
	f.svc.repo = &racingRepo{mockRepo: f.repo, winner: winner, checked: &checked}

	got, wasNew, err := f.svc.Create(ctx, nil, validConsult(), &token)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if wasNew {
		t.Error("race loser must report duplicate")
	}
	if got.ConsultID != winner.ConsultID {
		t.Errorf("got %q, want winner %q", got.ConsultID, winner.ConsultID)
	}
}

// racingRepo simulates a concurrent insert: the pre-check finds nothing,
// the insert hits the unique index, and the re-fetch finds the winner.
type racingRepo struct {
	*mockRepo
	winner  *Consult
	checked *bool
}

func (r *racingRepo) GetByClientToken(_ context.Context, token string) (*Consult, error) {
	if !*r.checked {
		*r.checked = true
		return nil, apperr.NotFound("consult not found")
	}
	return r.winner, nil
}

func (r *racingRepo) Insert(_ context.Context, c *Consult) error {
	return ErrDuplicateToken
}

func TestCreateFansOutToTeam(t *testing.T) {
	f := newFixture()
	created, _, err := f.svc.Create(context.Background(), nil, validConsult(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(f.notifier.fanouts) != 1 {
		t.Fatalf("fanouts = %d, want 1", len(f.notifier.fanouts))
	}
	call := f.notifier.fanouts[0]
	if len(call.recipients) != len(f.team.ids) {
		t.Errorf("recipients = %d, want %d", len(call.recipients), len(f.team.ids))
	}
	if call.consultID != created.ConsultID {
		t.Errorf("fanout consult = %q, want %q", call.consultID, created.ConsultID)
	}
	if !strings.HasPrefix(call.message, "New consult from Emergency Department:") {
		t.Errorf("unexpected message: %q", call.message)
	}
	if !created.NotificationSent {
		t.Error("notification_sent not flagged after delivery")
	}
}

func TestSetStatusNotifiesCreator(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := invitingUnit()
	created, _, err := f.svc.Create(ctx, owner, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	f.notifier.fanouts = nil

	if _, err := f.svc.SetStatus(ctx, registrar(), created.ID, StatusAccepted, nil); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if len(f.notifier.fanouts) != 1 {
		t.Fatalf("fanouts = %d, want 1 creator notice", len(f.notifier.fanouts))
	}
	call := f.notifier.fanouts[0]
	if len(call.recipients) != 1 || call.recipients[0] != owner.ID {
		t.Error("status notice not addressed to the creator")
	}
	if call.title != "Consult Status Updated" {
		t.Errorf("title = %q", call.title)
	}
	if !strings.Contains(call.message, "from pending to accepted") {
		t.Errorf("message = %q", call.message)
	}
}

func TestSetStatusAnonymousConsultSkipsNotice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	f.notifier.fanouts = nil

	if _, err := f.svc.SetStatus(ctx, registrar(), created.ID, StatusAccepted, nil); err != nil {
		t.Fatal(err)
	}
	if len(f.notifier.fanouts) != 0 {
		t.Error("unowned consult must not produce a creator notice")
	}
	// The audit entry still lands even with nobody to notify.
	last := f.auditor.entries[len(f.auditor.entries)-1]
	if last.action != "status_changed" {
		t.Errorf("audit action = %q", last.action)
	}
}

func TestCreateAttributesActor(t *testing.T) {
	f := newFixture()
	actor := invitingUnit()
	created, _, err := f.svc.Create(context.Background(), actor, validConsult(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedBy == nil || *created.CreatedBy != actor.ID {
		t.Error("authenticated submission not attributed")
	}

	anon, _, err := f.svc.Create(context.Background(), nil, validConsult(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if anon.CreatedBy != nil {
		t.Error("public submission must not carry an owner")
	}
}

// -- Visibility --

func TestListScopesInvitingUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	unitA := invitingUnit()
	unitB := invitingUnit()

	if _, _, err := f.svc.Create(ctx, unitA, validConsult(), nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.svc.Create(ctx, unitB, validConsult(), nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.svc.Create(ctx, nil, validConsult(), nil); err != nil {
		t.Fatal(err)
	}

	items, total, err := f.svc.List(ctx, unitA, Filter{}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("unit sees %d consults, want only its own 1", total)
	}

	items, total, err = f.svc.List(ctx, registrar(), Filter{}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("team sees %d consults, want all 3", total)
	}
	_ = items
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := invitingUnit()
	created, _, err := f.svc.Create(ctx, owner, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Get(ctx, owner, created.ID); err != nil {
		t.Errorf("owner get: %v", err)
	}
	if _, err := f.svc.Get(ctx, invitingUnit(), created.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("other unit get: %v, want forbidden", err)
	}
	if _, err := f.svc.Get(ctx, registrar(), created.ID); err != nil {
		t.Errorf("team get: %v", err)
	}
	if _, err := f.svc.Get(ctx, registrar(), uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("missing get: %v, want not found", err)
	}
}

// -- Status transitions --

func TestSetStatusBookkeeping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	actor := registrar()

	c, err := f.svc.SetStatus(ctx, actor, created.ID, StatusAccepted, nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if c.Status != StatusAccepted || c.AcceptedBy == nil || *c.AcceptedBy != actor.ID || c.AcceptedAt == nil {
		t.Error("accepted bookkeeping not applied")
	}

	c, err = f.svc.SetStatus(ctx, actor, created.ID, StatusReviewed, nil)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if c.ReviewedAt == nil {
		t.Error("reviewed_at not set")
	}

	c, err = f.svc.SetStatus(ctx, actor, created.ID, StatusCompleted, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if c.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestSetStatusReacceptOverwrites(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}

	first := registrar()
	second := registrar()
	if _, err := f.svc.SetStatus(ctx, first, created.ID, StatusAccepted, nil); err != nil {
		t.Fatal(err)
	}
	c, err := f.svc.SetStatus(ctx, second, created.ID, StatusAccepted, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.AcceptedBy == nil || *c.AcceptedBy != second.ID {
		t.Error("re-accept must record the latest acceptor")
	}
}

func TestSetStatusGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.SetStatus(ctx, invitingUnit(), created.ID, StatusAccepted, nil); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("inviting unit set status: %v, want forbidden", err)
	}
	if _, err := f.svc.SetStatus(ctx, registrar(), created.ID, "archived", nil); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("unknown status: %v, want validation", err)
	}
	if _, err := f.svc.SetStatus(ctx, registrar(), uuid.New(), StatusAccepted, nil); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("missing consult: %v, want not found", err)
	}
}

func TestSetStatusAudited(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.SetStatus(ctx, registrar(), created.ID, StatusAccepted, nil); err != nil {
		t.Fatal(err)
	}

	last := f.auditor.entries[len(f.auditor.entries)-1]
	if last.action != "status_changed" {
		t.Errorf("audit action = %q", last.action)
	}
	if last.details != "pending -> accepted" {
		t.Errorf("audit details = %q", last.details)
	}
	if last.entity != created.ConsultID {
		t.Errorf("audit entity = %q", last.entity)
	}
}

func TestSetStatusNotesLandInAudit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}

	notes := "patient transferred to theatre list"
	if _, err := f.svc.SetStatus(ctx, registrar(), created.ID, StatusAccepted, &notes); err != nil {
		t.Fatal(err)
	}

	last := f.auditor.entries[len(f.auditor.entries)-1]
	if last.details != "pending -> accepted: patient transferred to theatre list" {
		t.Errorf("audit details = %q", last.details)
	}
}

// -- Acknowledge --

func TestAcknowledgeDoesNotChangeStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _, err := f.svc.Create(ctx, nil, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	actor := registrar()

	c, err := f.svc.Acknowledge(ctx, actor, created.ID)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if c.Status != StatusPending {
		t.Errorf("status = %q; acknowledge must not move the lifecycle", c.Status)
	}
	if c.AcknowledgedBy == nil || *c.AcknowledgedBy != actor.ID || c.AcknowledgedAt == nil {
		t.Error("acknowledgement bookkeeping not applied")
	}

	last := f.auditor.entries[len(f.auditor.entries)-1]
	if last.action != "modified" {
		t.Errorf("audit action = %q, want modified", last.action)
	}

	if _, err := f.svc.Acknowledge(ctx, invitingUnit(), created.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("inviting unit acknowledge: %v, want forbidden", err)
	}
}

func TestAcknowledgeNotifiesCreator(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := invitingUnit()
	created, _, err := f.svc.Create(ctx, owner, validConsult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	f.notifier.fanouts = nil

	if _, err := f.svc.Acknowledge(ctx, registrar(), created.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	if len(f.notifier.fanouts) != 1 {
		t.Fatalf("fanouts = %d, want 1 creator notice", len(f.notifier.fanouts))
	}
	call := f.notifier.fanouts[0]
	if len(call.recipients) != 1 || call.recipients[0] != owner.ID {
		t.Error("acknowledgement notice not addressed to the creator")
	}
	if call.title != "Consult Acknowledged" {
		t.Errorf("title = %q", call.title)
	}
}

// -- Offline sync --

func TestSyncOfflinePreservesOrderAndFlagsDuplicates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := invitingUnit()

	// Token B has already been submitted online.
	tokenB := "device1-b"
	if _, _, err := f.svc.Create(ctx, actor, validConsult(), &tokenB); err != nil {
		t.Fatal(err)
	}

	items := []SyncItem{
		{Consult: *validConsult(), ClientToken: "device1-a"},
		{Consult: *validConsult(), ClientToken: tokenB},
		{Consult: *validConsult(), ClientToken: "device1-c"},
	}
	results := f.svc.SyncOffline(ctx, actor, items)

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].ClientToken != "device1-a" || results[1].ClientToken != tokenB || results[2].ClientToken != "device1-c" {
		t.Error("results out of submission order")
	}
	if results[0].Duplicate || results[2].Duplicate {
		t.Error("fresh tokens flagged as duplicates")
	}
	if !results[1].Duplicate {
		t.Error("replayed token not flagged as duplicate")
	}
	// One pre-existing + two fresh.
	if len(f.repo.items) != 3 {
		t.Errorf("stored = %d, want 3", len(f.repo.items))
	}
}

func TestAcknowledgementReceipt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	token := "ward3-0001"
	created, wasNew, err := f.svc.Create(ctx, nil, validConsult(), &token)
	if err != nil {
		t.Fatal(err)
	}
	ack := NewAcknowledgement(created, wasNew)
	if ack.Status != "success" || ack.Duplicate {
		t.Errorf("fresh receipt = %+v, want success and not duplicate", ack)
	}
	if ack.ConsultID != created.ConsultID {
		t.Errorf("receipt identifier = %q, want %q", ack.ConsultID, created.ConsultID)
	}
	if ack.ReceivedAt == nil || !ack.ReceivedAt.Equal(created.CreatedAt) {
		t.Errorf("receipt timestamp = %v, want creation time %v", ack.ReceivedAt, created.CreatedAt)
	}
	if !strings.Contains(ack.Message, created.ConsultID) {
		t.Errorf("receipt message %q should name the consult", ack.Message)
	}

	replayed, wasNew2, err := f.svc.Create(ctx, nil, validConsult(), &token)
	if err != nil {
		t.Fatal(err)
	}
	dup := NewAcknowledgement(replayed, wasNew2)
	if dup.Status != "success" || !dup.Duplicate {
		t.Errorf("replay receipt = %+v, want success and duplicate", dup)
	}
	if dup.ConsultID != ack.ConsultID {
		t.Errorf("replay identifier = %q, want original %q", dup.ConsultID, ack.ConsultID)
	}
	if !strings.Contains(dup.Message, "already") {
		t.Errorf("replay message %q should say the consult already exists", dup.Message)
	}
}

func TestSyncOfflineBadItemDoesNotBlockRest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bad := *validConsult()
	bad.Age = -5
	items := []SyncItem{
		{Consult: bad, ClientToken: "device1-bad"},
		{Consult: *validConsult(), ClientToken: "device1-good"},
	}
	results := f.svc.SyncOffline(ctx, invitingUnit(), items)

	if results[0].Error == "" || results[0].Status != "error" {
		t.Errorf("invalid item should carry an error status: %+v", results[0])
	}
	if results[1].Error != "" || results[1].Status != "success" || results[1].ConsultID == "" {
		t.Errorf("valid item should succeed: %+v", results[1])
	}
	if results[1].ReceivedAt == nil {
		t.Error("valid item should carry a receipt timestamp")
	}
}
