package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"debate_room/internal/models"
	"debate_room/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := storage.NewDatabase(storage.Config{Driver: "sqlite", FilePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return NewRepositories(db)
}

func createUser(t *testing.T, repos *Repositories, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "x"}
	require.NoError(t, repos.User.Create(context.Background(), user))
	return user
}

func createRoom(t *testing.T, repos *Repositories, code string, creatorID uint) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomCode:     code,
		CreatorID:    creatorID,
		Format:       "asian_parliamentary",
		Status:       models.RoomStatusWaiting,
		CurrentPhase: models.RoomPhaseSetup,
	}
	require.NoError(t, repos.Room.Create(context.Background(), room))
	return room
}

func TestRoomRepository_CodeIsUnique(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	user := createUser(t, repos, "alice")
	createRoom(t, repos, "ABC234", user.ID)

	dup := &models.Room{RoomCode: "ABC234", CreatorID: user.ID, Format: "asian_parliamentary",
		Status: models.RoomStatusWaiting, CurrentPhase: models.RoomPhaseSetup}
	err := repos.Room.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	found, err := repos.Room.FindByCode(ctx, "ABC234")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.CreatorID)

	_, err = repos.Room.FindByCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestParticipantRepository_SeatAndUserUnique(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")
	room := createRoom(t, repos, "ROOM22", alice.ID)

	pm := &models.Participant{RoomID: room.ID, UserID: alice.ID, Team: "government",
		SpeakerRole: "prime_minister", JoinedAt: time.Now()}
	require.NoError(t, repos.Participant.Create(ctx, pm))

	sameSeat := &models.Participant{RoomID: room.ID, UserID: bob.ID, Team: "government",
		SpeakerRole: "prime_minister", JoinedAt: time.Now()}
	assert.ErrorIs(t, repos.Participant.Create(ctx, sameSeat), ErrDuplicateKey)

	sameUser := &models.Participant{RoomID: room.ID, UserID: alice.ID, Team: "opposition",
		SpeakerRole: "leader_of_opposition", JoinedAt: time.Now()}
	assert.ErrorIs(t, repos.Participant.Create(ctx, sameUser), ErrDuplicateKey)

	list, err := repos.Participant.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].User)
	assert.Equal(t, "alice", list[0].User.Username)

	require.NoError(t, repos.Participant.Delete(ctx, pm))
	_, err = repos.Participant.FindByRoomAndUser(ctx, room.ID, alice.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRoomRepository_ListForUser(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")

	own := createRoom(t, repos, "AAAAAA", alice.ID)
	joined := createRoom(t, repos, "BBBBBB", bob.ID)
	createRoom(t, repos, "CCCCCC", bob.ID)

	require.NoError(t, repos.Participant.Create(ctx, &models.Participant{RoomID: joined.ID, UserID: alice.ID,
		Team: "opposition", SpeakerRole: "opposition_whip", JoinedAt: time.Now()}))

	rooms, err := repos.Room.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	ids := []uint{}
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []uint{own.ID, joined.ID}, ids)
}

func TestSpeechRepository_OpenSpeechAndSegments(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	alice := createUser(t, repos, "alice")
	room := createRoom(t, repos, "SPEECH", alice.ID)

	_, err := repos.Speech.FindOpenByRoom(ctx, room.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	started := time.Now().Add(-time.Hour)
	speech := &models.Speech{RoomID: room.ID, SpeakerRole: "prime_minister", UserID: alice.ID,
		SpeechType: "substantive", AllottedTime: 420, StartedAt: started}
	require.NoError(t, repos.Speech.Create(ctx, speech))

	given, err := repos.Speech.ExistsForSlot(ctx, room.ID, "prime_minister")
	require.NoError(t, err)
	assert.True(t, given)
	given, err = repos.Speech.ExistsForSlot(ctx, room.ID, "leader_of_opposition")
	require.NoError(t, err)
	assert.False(t, given)

	again := &models.Speech{RoomID: room.ID, SpeakerRole: "prime_minister", UserID: alice.ID,
		SpeechType: "substantive", AllottedTime: 420, StartedAt: started}
	assert.ErrorIs(t, repos.Speech.Create(ctx, again), ErrDuplicateKey)

	open, err := repos.Speech.FindOpenByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, speech.ID, open.ID)

	require.NoError(t, repos.Speech.AppendSegment(ctx, &models.TranscriptSegment{SpeechID: speech.ID, Offset: 30, Text: "second"}))
	require.NoError(t, repos.Speech.AppendSegment(ctx, &models.TranscriptSegment{SpeechID: speech.ID, Offset: 10, Text: "first"}))

	stale, err := repos.Speech.ListOpenStartedBefore(ctx, time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	speeches, err := repos.Speech.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, speeches, 1)
	require.Len(t, speeches[0].Segments, 2)
	assert.Equal(t, "first", speeches[0].Segments[0].Text)
	assert.Equal(t, "second", speeches[0].Segments[1].Text)
}

func TestRepositories_TransactionRollsBack(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	alice := createUser(t, repos, "alice")
	room := createRoom(t, repos, "TXTXTX", alice.ID)

	boom := errors.New("boom")
	err := repos.Transaction(ctx, func(tx *Repositories) error {
		locked, err := tx.Room.FindByIDForUpdate(ctx, room.ID)
		if err != nil {
			return err
		}
		locked.Status = models.RoomStatusCancelled
		if err := tx.Room.Update(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := repos.Room.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusWaiting, found.Status)
}

func TestFeedbackRepository_CreateBatch(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	alice := createUser(t, repos, "alice")
	room := createRoom(t, repos, "FEEDBK", alice.ID)

	require.NoError(t, repos.Feedback.CreateBatch(ctx, nil))
	require.NoError(t, repos.Feedback.CreateBatch(ctx, []models.Feedback{
		{RoomID: room.ID, Category: models.FeedbackOverall, Summary: "close debate",
			Strengths: []string{"structure"}},
		{RoomID: room.ID, Category: models.FeedbackSpeech, SpeakerRole: "prime_minister", UserID: &alice.ID, Score: 75},
	}))

	entries, err := repos.Feedback.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.FeedbackOverall, entries[0].Category)
	assert.Equal(t, []string{"structure"}, []string(entries[0].Strengths))
}

func TestArgumentRepository_ParentLinks(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	alice := createUser(t, repos, "alice")
	room := createRoom(t, repos, "ARGMAP", alice.ID)
	other := createRoom(t, repos, "OTHER2", alice.ID)

	claim := &models.ArgumentNode{RoomID: room.ID, SpeakerRole: "prime_minister", Team: "government",
		Kind: models.ArgumentKindArgument, Summary: "Bans protect children"}
	require.NoError(t, repos.Argument.Create(ctx, claim))

	rebuttal := &models.ArgumentNode{RoomID: room.ID, ParentID: &claim.ID, SpeakerRole: "leader_of_opposition",
		Team: "opposition", Kind: models.ArgumentKindRebuttal, Summary: "Bans push children to worse platforms"}
	require.NoError(t, repos.Argument.Create(ctx, rebuttal))
	require.NoError(t, repos.Argument.Create(ctx, &models.ArgumentNode{RoomID: other.ID,
		Kind: models.ArgumentKindClash, Summary: "unrelated"}))

	nodes, err := repos.Argument.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, claim.ID, nodes[0].ID)
	assert.Nil(t, nodes[0].ParentID)
	require.NotNil(t, nodes[1].ParentID)
	assert.Equal(t, claim.ID, *nodes[1].ParentID)
}
