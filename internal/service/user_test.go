package service

import (
	"testing"
	"time"

	"debate_room/internal/format"
	"debate_room/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	utils.ConfigureJWT("service-test-secret", time.Hour)
	f := newFixture(t)

	user, err := f.services.User.Register(f.ctx, " alice ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, string(format.ExperienceNovice), user.ExperienceLevel)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	_, err = f.services.User.Register(f.ctx, "alice", "another")
	require.Error(t, err)
	assert.Equal(t, "Username already taken", err.Error())

	token, loggedIn, err := f.services.User.Login(f.ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = f.services.User.Login(f.ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.services.User.Login(f.ctx, "nobody", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", err.Error())
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	name, bio, level := "Alice Chen", "Debating since 2019", "intermediate"
	updated, err := f.services.User.UpdateProfile(f.ctx, alice.ID, ProfileUpdate{Name: &name, Bio: &bio, ExperienceLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, "Alice Chen", updated.Name)
	assert.Equal(t, "intermediate", updated.ExperienceLevel)

	profile, err := f.services.User.GetProfile(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Debating since 2019", profile.Bio)

	bad := "grandmaster"
	_, err = f.services.User.UpdateProfile(f.ctx, alice.ID, ProfileUpdate{ExperienceLevel: &bad})
	assert.ErrorIs(t, err, ErrInvalidExperience)

	_, err = f.services.User.GetProfile(f.ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDebateHistory(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")

	own := f.room(alice)
	other := f.room(bob)
	f.join(alice, other, format.RoleOppositionWhip)
	f.room(bob)

	history, err := f.services.User.DebateHistory(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	byRoom := map[uint]HistoryEntry{}
	for _, h := range history {
		byRoom[h.Room.ID] = h
	}
	assert.True(t, byRoom[own.ID].IsCreator)
	assert.Nil(t, byRoom[own.ID].Seat)
	assert.False(t, byRoom[other.ID].IsCreator)
	require.NotNil(t, byRoom[other.ID].Seat)
	assert.Equal(t, "opposition_whip", byRoom[other.ID].Seat.SpeakerRole)
}
