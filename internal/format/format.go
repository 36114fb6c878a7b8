package format

import (
	"fmt"
	"strings"
)

// Team 隊伍
type Team string

const (
	TeamGovernment Team = "government"
	TeamOpposition Team = "opposition"
)

// ParseTeam 將字串轉換為 Team，未知值回傳錯誤
func ParseTeam(s string) (Team, error) {
	switch Team(s) {
	case TeamGovernment, TeamOpposition:
		return Team(s), nil
	default:
		return "", fmt.Errorf("unknown team %q", s)
	}
}

// Label 回傳顯示用名稱
func (t Team) Label() string {
	switch t {
	case TeamGovernment:
		return "Government"
	case TeamOpposition:
		return "Opposition"
	default:
		return string(t)
	}
}

// SpeakerRole 發言順序中的角色；前六個是席位，後兩個是結辯
type SpeakerRole string

const (
	RolePrimeMinister            SpeakerRole = "prime_minister"
	RoleLeaderOfOpposition       SpeakerRole = "leader_of_opposition"
	RoleDeputyPrimeMinister      SpeakerRole = "deputy_prime_minister"
	RoleDeputyLeaderOfOpposition SpeakerRole = "deputy_leader_of_opposition"
	RoleGovernmentWhip           SpeakerRole = "government_whip"
	RoleOppositionWhip           SpeakerRole = "opposition_whip"
	RoleOppositionReply          SpeakerRole = "opposition_reply"
	RoleGovernmentReply          SpeakerRole = "government_reply"
)

// ParseSpeakerRole 將字串轉換為 SpeakerRole，未知值回傳錯誤
func ParseSpeakerRole(s string) (SpeakerRole, error) {
	switch r := SpeakerRole(s); r {
	case RolePrimeMinister, RoleLeaderOfOpposition,
		RoleDeputyPrimeMinister, RoleDeputyLeaderOfOpposition,
		RoleGovernmentWhip, RoleOppositionWhip,
		RoleOppositionReply, RoleGovernmentReply:
		return r, nil
	default:
		return "", fmt.Errorf("unknown speaker role %q", s)
	}
}

// IsReply 判斷是否為結辯角色（角色名稱含 "reply"）
func (r SpeakerRole) IsReply() bool {
	return strings.Contains(string(r), "reply")
}

// SpeechType 發言類型
type SpeechType string

const (
	SpeechSubstantive SpeechType = "substantive"
	SpeechReply       SpeechType = "reply"
)

// SpeechTypeFor 由角色推導發言類型
func SpeechTypeFor(role SpeakerRole) SpeechType {
	if role.IsReply() {
		return SpeechReply
	}
	return SpeechSubstantive
}

// Slot 發言順序中的一格
type Slot struct {
	Index        int         `json:"index"`
	Role         SpeakerRole `json:"role"`
	Team         Team        `json:"team"`
	Label        string      `json:"label"`
	AllottedTime int         `json:"time"` // 秒
	Type         SpeechType  `json:"type"`
}

// POIRules 質詢規則，單位皆為秒
type POIRules struct {
	ProtectedTimeStart int `json:"protectedTimeStart"`
	ProtectedTimeEnd   int `json:"protectedTimeEnd"`
	MinDuration        int `json:"minDuration"`
	MaxDuration        int `json:"maxDuration"`
}

// ReplyRules 結辯規則；目前僅作為政策說明，不在程式中強制
type ReplyRules struct {
	NoNewArguments               bool `json:"noNewArguments"`
	SpeakerMustBePreviousSpeaker bool `json:"speakerMustBePreviousSpeaker"`
}

// Format 一種辯論賽制
type Format struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	TeamsCount      int        `json:"teamsCount"`
	SpeakersPerTeam int        `json:"speakersPerTeam"`
	Teams           []Team     `json:"teams"`
	SpeakingOrder   []Slot     `json:"speakingOrder"`
	POI             POIRules   `json:"poi"`
	ReplyRules      ReplyRules `json:"replyRules"`
}

const (
	AsianParliamentaryID = "asian_parliamentary"

	substantiveTime = 420
	replyTime       = 240
)

var asianParliamentary = Format{
	ID:              AsianParliamentaryID,
	Name:            "Asian Parliamentary",
	TeamsCount:      2,
	SpeakersPerTeam: 3,
	Teams:           []Team{TeamGovernment, TeamOpposition},
	SpeakingOrder: []Slot{
		{0, RolePrimeMinister, TeamGovernment, "Prime Minister", substantiveTime, SpeechSubstantive},
		{1, RoleLeaderOfOpposition, TeamOpposition, "Leader of Opposition", substantiveTime, SpeechSubstantive},
		{2, RoleDeputyPrimeMinister, TeamGovernment, "Deputy Prime Minister", substantiveTime, SpeechSubstantive},
		{3, RoleDeputyLeaderOfOpposition, TeamOpposition, "Deputy Leader of Opposition", substantiveTime, SpeechSubstantive},
		{4, RoleGovernmentWhip, TeamGovernment, "Government Whip", substantiveTime, SpeechSubstantive},
		{5, RoleOppositionWhip, TeamOpposition, "Opposition Whip", substantiveTime, SpeechSubstantive},
		{6, RoleOppositionReply, TeamOpposition, "Opposition Reply", replyTime, SpeechReply},
		{7, RoleGovernmentReply, TeamGovernment, "Government Reply", replyTime, SpeechReply},
	},
	POI: POIRules{
		ProtectedTimeStart: 60,
		ProtectedTimeEnd:   60,
		MinDuration:        15,
		MaxDuration:        15,
	},
	ReplyRules: ReplyRules{
		NoNewArguments:               true,
		SpeakerMustBePreviousSpeaker: true,
	},
}

// AsianParliamentary 回傳亞洲議會制的定義（複本，呼叫端修改不影響原始資料）
func AsianParliamentary() *Format {
	f := asianParliamentary
	f.Teams = append([]Team(nil), asianParliamentary.Teams...)
	f.SpeakingOrder = append([]Slot(nil), asianParliamentary.SpeakingOrder...)
	return &f
}

// Lookup 依 ID 取得賽制
func Lookup(id string) (*Format, bool) {
	switch id {
	case AsianParliamentaryID:
		return AsianParliamentary(), true
	default:
		return nil, false
	}
}

// SlotAt 取得指定索引的發言格
func (f *Format) SlotAt(index int) (Slot, bool) {
	if index < 0 || index >= len(f.SpeakingOrder) {
		return Slot{}, false
	}
	return f.SpeakingOrder[index], true
}

// LastIndex 最後一格的索引
func (f *Format) LastIndex() int {
	return len(f.SpeakingOrder) - 1
}

// SlotFor 依角色取得發言格
func (f *Format) SlotFor(role SpeakerRole) (Slot, bool) {
	for _, s := range f.SpeakingOrder {
		if s.Role == role {
			return s, true
		}
	}
	return Slot{}, false
}

// SeatFor 結辯角色對應到實際發言的席位；其他角色對應自己
func (f *Format) SeatFor(role SpeakerRole) SpeakerRole {
	switch role {
	case RoleOppositionReply:
		return RoleLeaderOfOpposition
	case RoleGovernmentReply:
		return RolePrimeMinister
	default:
		return role
	}
}

// IsSeat 判斷角色是否為可加入的席位（結辯不是席位）
func (f *Format) IsSeat(role SpeakerRole) bool {
	slot, ok := f.SlotFor(role)
	return ok && slot.Type == SpeechSubstantive
}

// SeatBelongsTo 判斷席位是否屬於指定隊伍
func (f *Format) SeatBelongsTo(role SpeakerRole, team Team) bool {
	slot, ok := f.SlotFor(role)
	return ok && slot.Type == SpeechSubstantive && slot.Team == team
}

// Seats 回傳隊伍的所有席位，依發言順序排列
func (f *Format) Seats(team Team) []SpeakerRole {
	var roles []SpeakerRole
	for _, s := range f.SpeakingOrder {
		if s.Type == SpeechSubstantive && s.Team == team {
			roles = append(roles, s.Role)
		}
	}
	return roles
}

// ActiveSpeakingOrder 只保留底層席位有人的發言格；不影響 advance 的索引運算
func (f *Format) ActiveSpeakingOrder(occupied map[SpeakerRole]bool) []Slot {
	var active []Slot
	for _, s := range f.SpeakingOrder {
		if occupied[f.SeatFor(s.Role)] {
			active = append(active, s)
		}
	}
	return active
}

// POIWindow 回傳允許質詢的區間 [from, to]
func (f *Format) POIWindow(allotted int) (from, to int) {
	return f.POI.ProtectedTimeStart, allotted - f.POI.ProtectedTimeEnd
}

// POIAllowed 判斷發言第 elapsed 秒是否可以提出質詢
func (f *Format) POIAllowed(elapsed, allotted int) bool {
	from, to := f.POIWindow(allotted)
	return elapsed >= from && elapsed <= to
}
