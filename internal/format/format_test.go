package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsianParliamentary_SpeakingOrder(t *testing.T) {
	f := AsianParliamentary()

	require.Len(t, f.SpeakingOrder, 8)
	assert.Equal(t, 7, f.LastIndex())

	for i, s := range f.SpeakingOrder {
		assert.Equal(t, i, s.Index)
		switch s.Type {
		case SpeechSubstantive:
			assert.Equal(t, 420, s.AllottedTime, s.Role)
		case SpeechReply:
			assert.Equal(t, 240, s.AllottedTime, s.Role)
		default:
			t.Fatalf("unexpected speech type %q", s.Type)
		}
	}

	last, ok := f.SlotAt(7)
	require.True(t, ok)
	assert.Equal(t, RoleGovernmentReply, last.Role)

	_, ok = f.SlotAt(8)
	assert.False(t, ok)
	_, ok = f.SlotAt(-1)
	assert.False(t, ok)
}

func TestAsianParliamentary_ReturnsCopy(t *testing.T) {
	f := AsianParliamentary()
	f.SpeakingOrder[0].AllottedTime = 1

	assert.Equal(t, 420, AsianParliamentary().SpeakingOrder[0].AllottedTime)
}

func TestLookup(t *testing.T) {
	f, ok := Lookup(AsianParliamentaryID)
	require.True(t, ok)
	assert.Equal(t, "Asian Parliamentary", f.Name)

	_, ok = Lookup("british_parliamentary")
	assert.False(t, ok)
}

func TestSeatFor_ReplyAliasing(t *testing.T) {
	f := AsianParliamentary()

	assert.Equal(t, RoleLeaderOfOpposition, f.SeatFor(RoleOppositionReply))
	assert.Equal(t, RolePrimeMinister, f.SeatFor(RoleGovernmentReply))
	assert.Equal(t, RoleGovernmentWhip, f.SeatFor(RoleGovernmentWhip))
}

func TestSeatBelongsTo(t *testing.T) {
	f := AsianParliamentary()

	for _, role := range f.Seats(TeamGovernment) {
		assert.True(t, f.SeatBelongsTo(role, TeamGovernment), role)
		assert.False(t, f.SeatBelongsTo(role, TeamOpposition), role)
	}
	for _, role := range f.Seats(TeamOpposition) {
		assert.True(t, f.SeatBelongsTo(role, TeamOpposition), role)
		assert.False(t, f.SeatBelongsTo(role, TeamGovernment), role)
	}

	assert.Len(t, f.Seats(TeamGovernment), 3)
	assert.Len(t, f.Seats(TeamOpposition), 3)

	// 結辯不是席位
	assert.False(t, f.SeatBelongsTo(RoleGovernmentReply, TeamGovernment))
	assert.False(t, f.IsSeat(RoleOppositionReply))
	assert.True(t, f.IsSeat(RoleOppositionWhip))
}

func TestActiveSpeakingOrder(t *testing.T) {
	f := AsianParliamentary()

	t.Run("full room", func(t *testing.T) {
		occupied := map[SpeakerRole]bool{}
		for _, team := range f.Teams {
			for _, r := range f.Seats(team) {
				occupied[r] = true
			}
		}
		assert.Len(t, f.ActiveSpeakingOrder(occupied), 8)
	})

	t.Run("prime minister only", func(t *testing.T) {
		active := f.ActiveSpeakingOrder(map[SpeakerRole]bool{RolePrimeMinister: true})
		require.Len(t, active, 2)
		assert.Equal(t, RolePrimeMinister, active[0].Role)
		assert.Equal(t, RoleGovernmentReply, active[1].Role)
		assert.Equal(t, 7, active[1].Index)
	})

	t.Run("whips only have no reply", func(t *testing.T) {
		active := f.ActiveSpeakingOrder(map[SpeakerRole]bool{
			RoleGovernmentWhip: true,
			RoleOppositionWhip: true,
		})
		require.Len(t, active, 2)
		assert.Equal(t, RoleGovernmentWhip, active[0].Role)
		assert.Equal(t, RoleOppositionWhip, active[1].Role)
	})
}

func TestPOIAllowed(t *testing.T) {
	f := AsianParliamentary()

	tests := []struct {
		elapsed  int
		allotted int
		want     bool
	}{
		{0, 420, false},
		{59, 420, false},
		{60, 420, true},
		{200, 420, true},
		{360, 420, true},
		{361, 420, false},
		{59, 240, false},
		{120, 240, true},
		{180, 240, true},
		{181, 240, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.POIAllowed(tt.elapsed, tt.allotted), "elapsed=%d allotted=%d", tt.elapsed, tt.allotted)
	}
}

func TestSpeechTypeFor(t *testing.T) {
	assert.Equal(t, SpeechReply, SpeechTypeFor(RoleGovernmentReply))
	assert.Equal(t, SpeechReply, SpeechTypeFor(RoleOppositionReply))
	assert.Equal(t, SpeechSubstantive, SpeechTypeFor(RolePrimeMinister))
}

func TestParseEnums(t *testing.T) {
	_, err := ParseTeam("government")
	assert.NoError(t, err)
	_, err = ParseTeam("crossbench")
	assert.Error(t, err)

	_, err = ParseSpeakerRole("opposition_reply")
	assert.NoError(t, err)
	_, err = ParseSpeakerRole("speaker_of_the_house")
	assert.Error(t, err)

	topic, err := ParseTopicArea("technology")
	require.NoError(t, err)
	assert.Equal(t, "Technology & Innovation", topic.Label())
	_, err = ParseTopicArea("sports")
	assert.Error(t, err)

	_, err = ParseDifficulty("advanced")
	assert.NoError(t, err)
	_, err = ParseDifficulty("impossible")
	assert.Error(t, err)

	_, err = ParseExperienceLevel("expert")
	assert.NoError(t, err)
	_, err = ParseExperienceLevel("grandmaster")
	assert.Error(t, err)
}
