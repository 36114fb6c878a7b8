package service

import (
	"context"
	"strings"

	"debate_room/internal/ai"
	"debate_room/internal/format"
	"debate_room/internal/models"
	"debate_room/internal/repository"
	"debate_room/internal/storage"
	"debate_room/pkg/log"
)

// FeedbackService 辯論結束後以完整逐字稿產生評語
type FeedbackService struct {
	repos     *repository.Repositories
	snapshots *SnapshotCache
	notifier  Notifier
	generator ai.FeedbackGenerator
}

func NewFeedbackService(repos *repository.Repositories, snapshots *SnapshotCache, notifier Notifier, generator ai.FeedbackGenerator) *FeedbackService {
	return &FeedbackService{
		repos:     repos,
		snapshots: snapshots,
		notifier:  notifier,
		generator: generator,
	}
}

// Generate 產生並儲存評語，之後把房間從 feedback 推進到 completed；產生失敗也會推進
func (s *FeedbackService) Generate(ctx context.Context, roomID uint) error {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFoundAs(err, ErrRoomNotFound)
	}
	if room.Status != models.RoomStatusCompleted || room.CurrentPhase != models.RoomPhaseFeedback {
		return nil
	}

	result, genErr := s.generate(ctx, room)
	if genErr != nil {
		log.Ctx(ctx).Error().Err(genErr).Uint(log.FieldRoomID, roomID).Msg("feedback generator failed")
		result = &adjudication{}
	}

	var nodes int
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		locked, err := tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return err
		}
		if locked.CurrentPhase != models.RoomPhaseFeedback {
			return nil
		}
		if err := tx.Feedback.CreateBatch(ctx, result.entries); err != nil {
			return err
		}
		if nodes, err = saveArguments(ctx, tx, result.arguments); err != nil {
			return err
		}
		locked.CurrentPhase = models.RoomPhaseCompleted
		room = locked
		return tx.Room.Update(ctx, locked)
	})
	if err != nil {
		return err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventFeedbackReady, roomID, map[string]int{
		"entries":   len(result.entries),
		"arguments": nodes,
	})
	return nil
}

// adjudication 一次評語產生的結果
type adjudication struct {
	entries   []models.Feedback
	arguments []argumentDraft
}

// argumentDraft 尚未寫入的論點節點，parentRef 在寫入時才換成 ParentID
type argumentDraft struct {
	node      models.ArgumentNode
	ref       string
	parentRef string
}

// saveArguments 依序寫入節點；parentRef 只能指向先前的節點，找不到時當作根節點
func saveArguments(ctx context.Context, tx *repository.Repositories, drafts []argumentDraft) (int, error) {
	ids := make(map[string]uint, len(drafts))
	for _, d := range drafts {
		node := d.node
		if id, ok := ids[d.parentRef]; ok && d.parentRef != "" {
			node.ParentID = &id
		}
		if err := tx.Argument.Create(ctx, &node); err != nil {
			return 0, err
		}
		if d.ref != "" {
			ids[d.ref] = node.ID
		}
	}
	return len(drafts), nil
}

func (s *FeedbackService) generate(ctx context.Context, room *models.Room) (*adjudication, error) {
	if s.generator == nil {
		return nil, ai.ErrNotConfigured
	}

	f, err := formatOf(room)
	if err != nil {
		return nil, err
	}
	participants, err := s.repos.Participant.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	speeches, err := s.repos.Speech.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	pois, err := s.repos.POI.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	input := ai.FeedbackInput{}
	if room.MotionID != nil {
		if motion, err := s.repos.Motion.FindByID(ctx, *room.MotionID); err == nil {
			input.Motion = motion.Motion
		}
	}

	bySeat := make(map[format.SpeakerRole]*models.Participant, len(participants))
	for i := range participants {
		bySeat[format.SpeakerRole(participants[i].SpeakerRole)] = &participants[i]
	}
	poiCount := make(map[uint]int, len(pois))
	for _, p := range pois {
		poiCount[p.SpeechID]++
	}

	spoken := make(map[string]uint, len(speeches))
	for _, sp := range speeches {
		role := format.SpeakerRole(sp.SpeakerRole)
		label := sp.SpeakerRole
		if slot, ok := f.SlotFor(role); ok {
			label = slot.Label
		}
		texts := make([]string, 0, len(sp.Segments))
		for _, seg := range sp.Segments {
			texts = append(texts, seg.Text)
		}
		duration := 0
		if sp.Duration != nil {
			duration = *sp.Duration
		}
		input.Speeches = append(input.Speeches, ai.SpeechTranscript{
			Role:        sp.SpeakerRole,
			Label:       label,
			Speaker:     participantName(bySeat[f.SeatFor(role)]),
			Duration:    duration,
			Text:        strings.Join(texts, " "),
			POIReceived: poiCount[sp.ID],
		})
		spoken[sp.SpeakerRole] = sp.ID
	}

	generated, err := s.generator.GenerateFeedback(ctx, input)
	if err != nil {
		return nil, err
	}

	entries := []models.Feedback{{
		RoomID:       room.ID,
		Category:     models.FeedbackOverall,
		Score:        generated.Overall.Score,
		Summary:      generated.Overall.Summary,
		Strengths:    storage.StringArray(generated.Overall.Strengths),
		Improvements: storage.StringArray(generated.Overall.Improvements),
	}}
	for _, sf := range generated.Speeches {
		if _, ok := spoken[sf.Role]; !ok {
			continue
		}
		entry := models.Feedback{
			RoomID:       room.ID,
			SpeakerRole:  sf.Role,
			Category:     models.FeedbackSpeech,
			Score:        sf.Score,
			Summary:      sf.Summary,
			Strengths:    storage.StringArray(sf.Strengths),
			Improvements: storage.StringArray(sf.Improvements),
		}
		if p := bySeat[f.SeatFor(format.SpeakerRole(sf.Role))]; p != nil {
			userID := p.UserID
			entry.UserID = &userID
		}
		entries = append(entries, entry)
	}

	return &adjudication{
		entries:   entries,
		arguments: argumentDrafts(room.ID, f, spoken, generated.Arguments),
	}, nil
}

// argumentDrafts 丟棄類型不明或不屬於已發言角色的節點；只有 clash 可以不指定角色
func argumentDrafts(roomID uint, f *format.Format, spoken map[string]uint, extracted []ai.ExtractedArgument) []argumentDraft {
	var drafts []argumentDraft
	for _, arg := range extracted {
		kind, ok := models.ParseArgumentKind(arg.Kind)
		summary := strings.TrimSpace(arg.Summary)
		if !ok || summary == "" {
			continue
		}

		node := models.ArgumentNode{RoomID: roomID, Kind: kind, Summary: summary}
		if arg.Role != "" {
			speechID, ok := spoken[arg.Role]
			if !ok {
				continue
			}
			slot, _ := f.SlotFor(format.SpeakerRole(arg.Role))
			node.SpeakerRole = arg.Role
			node.Team = string(slot.Team)
			node.SpeechID = &speechID
		} else if kind != models.ArgumentKindClash {
			continue
		}

		drafts = append(drafts, argumentDraft{
			node:      node,
			ref:       strings.TrimSpace(arg.Ref),
			parentRef: strings.TrimSpace(arg.RespondsTo),
		})
	}
	return drafts
}

func participantName(p *models.Participant) string {
	if p == nil {
		return ""
	}
	return p.User.DisplayName()
}

// ListFeedback 房間的評語，整體評語在前
func (s *FeedbackService) ListFeedback(ctx context.Context, roomID uint) ([]models.Feedback, error) {
	if _, err := s.repos.Room.FindByID(ctx, roomID); err != nil {
		return nil, notFoundAs(err, ErrRoomNotFound)
	}
	return s.repos.Feedback.ListByRoom(ctx, roomID)
}

// ListArguments 房間的論點圖節點，供前端繪製心智圖
func (s *FeedbackService) ListArguments(ctx context.Context, roomID uint) ([]models.ArgumentNode, error) {
	if _, err := s.repos.Room.FindByID(ctx, roomID); err != nil {
		return nil, notFoundAs(err, ErrRoomNotFound)
	}
	return s.repos.Argument.ListByRoom(ctx, roomID)
}
