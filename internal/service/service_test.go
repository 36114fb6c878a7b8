package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"debate_room/internal/ai"
	"debate_room/internal/cache"
	"debate_room/internal/format"
	"debate_room/internal/models"
	"debate_room/internal/repository"
	"debate_room/internal/storage"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu            sync.Mutex
	events        []*models.RoomEvent
	announcements []string
}

func (n *recordingNotifier) Publish(_ context.Context, event *models.RoomEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Announce(_ context.Context, _ uint, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.announcements = append(n.announcements, text)
}

func (n *recordingNotifier) count(eventType models.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Type == eventType {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) lastAnnouncement() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.announcements) == 0 {
		return ""
	}
	return n.announcements[len(n.announcements)-1]
}

type fakeMotions struct {
	err   error
	calls int
}

func (f *fakeMotions) GenerateMotion(_ context.Context, topic format.TopicArea, _ format.Difficulty) (*ai.GeneratedMotion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ai.GeneratedMotion{
		Motion:            "This House would regulate " + string(topic),
		BackgroundContext: "Background",
		KeyStakeholders:   []string{"Citizens", "Government"},
	}, nil
}

type fakeFeedback struct {
	err       error
	input     ai.FeedbackInput
	calls     int
	arguments []ai.ExtractedArgument
}

func (f *fakeFeedback) GenerateFeedback(_ context.Context, input ai.FeedbackInput) (*ai.GeneratedFeedback, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	out := &ai.GeneratedFeedback{
		Overall:   ai.FeedbackEntry{Score: 80, Summary: "Well argued", Strengths: []string{"clash"}},
		Arguments: f.arguments,
	}
	for _, sp := range input.Speeches {
		out.Speeches = append(out.Speeches, ai.SpeechFeedback{
			Role:          sp.Role,
			FeedbackEntry: ai.FeedbackEntry{Score: 70, Summary: sp.Label},
		})
	}
	return out, nil
}

type fakeTranscriber struct {
	err  error
	text string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, req ai.TranscriptionRequest) (*ai.Transcription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Transcription{Language: "english", Duration: 5, Text: f.text}, nil
}

type fixture struct {
	t           *testing.T
	ctx         context.Context
	repos       *repository.Repositories
	services    *Services
	notifier    *recordingNotifier
	motions     *fakeMotions
	feedback    *fakeFeedback
	transcriber *fakeTranscriber
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, roomCache cache.RoomCache) *fixture {
	t.Helper()
	db, err := storage.NewDatabase(storage.Config{Driver: "sqlite", FilePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	f := &fixture{
		t:           t,
		ctx:         context.Background(),
		repos:       repository.NewRepositories(db),
		notifier:    &recordingNotifier{},
		motions:     &fakeMotions{},
		feedback:    &fakeFeedback{},
		transcriber: &fakeTranscriber{text: "Madam Speaker, we propose"},
	}
	f.services = NewServices(f.repos, Options{
		Cache:        roomCache,
		CacheTTL:     time.Minute,
		Notifier:     f.notifier,
		Motions:      f.motions,
		Feedback:     f.feedback,
		Transcriber:  f.transcriber,
		GraceSeconds: 30,
	})
	f.services.Room.runAsync = func(fn func()) { fn() }
	return f
}

func (f *fixture) user(name string) *models.User {
	f.t.Helper()
	user := &models.User{Username: name, Password: "x", Name: name}
	require.NoError(f.t, f.repos.User.Create(f.ctx, user))
	return user
}

func (f *fixture) room(creator *models.User) *models.Room {
	f.t.Helper()
	room, err := f.services.Room.CreateRoom(f.ctx, creator.ID, "")
	require.NoError(f.t, err)
	return room
}

func (f *fixture) motion(creator *models.User, room *models.Room) *models.Motion {
	f.t.Helper()
	motion, err := f.services.Motion.GenerateMotion(f.ctx, creator.ID, room.ID, "technology", "novice")
	require.NoError(f.t, err)
	return motion
}

func (f *fixture) join(user *models.User, room *models.Room, role format.SpeakerRole) *models.Participant {
	f.t.Helper()
	slot, ok := format.AsianParliamentary().SlotFor(role)
	require.True(f.t, ok)
	p, err := f.services.Room.JoinRoom(f.ctx, user.ID, room.RoomCode, string(slot.Team), string(role))
	require.NoError(f.t, err)
	return p
}

func (f *fixture) ready(user *models.User, room *models.Room) {
	f.t.Helper()
	_, err := f.services.Room.SetReady(f.ctx, user.ID, room.ID, true)
	require.NoError(f.t, err)
}

func (f *fixture) reload(room *models.Room) *models.Room {
	f.t.Helper()
	r, err := f.repos.Room.FindByID(f.ctx, room.ID)
	require.NoError(f.t, err)
	return r
}

var seatOrder = []format.SpeakerRole{
	format.RolePrimeMinister,
	format.RoleLeaderOfOpposition,
	format.RoleDeputyPrimeMinister,
	format.RoleDeputyLeaderOfOpposition,
	format.RoleGovernmentWhip,
	format.RoleOppositionWhip,
}

// debate 建立房間並依 seats 入座、準備、設定辯題後開始；第一個入座者即房主
type debate struct {
	room    *models.Room
	creator *models.User
	seats   map[format.SpeakerRole]*models.User
}

func (f *fixture) startedDebate(seats ...format.SpeakerRole) *debate {
	f.t.Helper()
	d := f.waitingDebate(seats...)
	room, err := f.services.Room.StartDebate(f.ctx, d.creator.ID, d.room.ID)
	require.NoError(f.t, err)
	d.room = room
	return d
}

func (f *fixture) waitingDebate(seats ...format.SpeakerRole) *debate {
	f.t.Helper()
	if len(seats) == 0 {
		seats = seatOrder
	}
	d := &debate{seats: map[format.SpeakerRole]*models.User{}}
	for _, role := range seats {
		u := f.user(string(role))
		if d.creator == nil {
			d.creator = u
			d.room = f.room(u)
		}
		f.join(u, d.room, role)
		f.ready(u, d.room)
		d.seats[role] = u
	}
	f.motion(d.creator, d.room)
	d.room = f.reload(d.room)
	return d
}

// moveTo 直接把房間移到指定發言格
func (f *fixture) moveTo(room *models.Room, index int) {
	f.t.Helper()
	r := f.reload(room)
	r.CurrentSpeakerIndex = index
	require.NoError(f.t, f.repos.Room.Update(f.ctx, r))
}
