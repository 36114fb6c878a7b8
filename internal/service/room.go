package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"debate_room/internal/format"
	"debate_room/internal/models"
	"debate_room/internal/repository"
	"debate_room/internal/utils"
	"debate_room/pkg/log"
)

const maxRoomCodeAttempts = 5

// AdvanceResult advanceSpeaker 的結果；Completed 時 NextSpeakerIndex 為 nil
type AdvanceResult struct {
	Completed        bool `json:"completed"`
	NextSpeakerIndex *int `json:"nextSpeakerIndex"`
}

// RoomService 房間的狀態機：建立、加入、準備、開始與輪換發言者
type RoomService struct {
	repos     *repository.Repositories
	snapshots *SnapshotCache
	notifier  Notifier
	feedback  *FeedbackService
	codeGen   func() (string, error)
	runAsync  func(func())
	now       func() time.Time
}

func NewRoomService(repos *repository.Repositories, snapshots *SnapshotCache, notifier Notifier, feedback *FeedbackService) *RoomService {
	return &RoomService{
		repos:     repos,
		snapshots: snapshots,
		notifier:  notifier,
		feedback:  feedback,
		codeGen:   utils.GenerateRoomCode,
		runAsync:  func(fn func()) { go fn() },
		now:       time.Now,
	}
}

// CreateRoom 建立等待中的房間；房間代碼重複時重新產生
func (s *RoomService) CreateRoom(ctx context.Context, creatorID uint, formatID string) (*models.Room, error) {
	if formatID == "" {
		formatID = format.AsianParliamentaryID
	}
	if _, ok := format.Lookup(formatID); !ok {
		return nil, ErrUnsupportedFormat
	}

	var lastErr error
	for attempt := 0; attempt < maxRoomCodeAttempts; attempt++ {
		code, err := s.codeGen()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}

		room := &models.Room{
			RoomCode:     code,
			CreatorID:    creatorID,
			Format:       formatID,
			Status:       models.RoomStatusWaiting,
			CurrentPhase: models.RoomPhaseSetup,
		}
		err = s.repos.Room.Create(ctx, room)
		if err == nil {
			log.Audit(ctx, "room.create", creatorID, room.ID, "room created")
			return room, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, err
		}
		lastErr = err
		log.Ctx(ctx).Debug().Str("room_code", code).Msg("room code collision, regenerating")
	}
	return nil, fmt.Errorf("could not allocate a unique room code: %w", lastErr)
}

// JoinRoom 以房間代碼加入指定隊伍與席位
func (s *RoomService) JoinRoom(ctx context.Context, userID uint, roomCode, team, speakerRole string) (*models.Participant, error) {
	code, err := utils.NormalizeRoomCode(roomCode)
	if err != nil {
		return nil, ErrInvalidRoomCode
	}
	t, err := format.ParseTeam(team)
	if err != nil {
		return nil, ErrInvalidTeam
	}

	var (
		room        *models.Room
		participant *models.Participant
	)
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByCodeForUpdate(ctx, code)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if room.Status != models.RoomStatusWaiting {
			return ErrRoomNotAccepting
		}

		f, err := formatOf(room)
		if err != nil {
			return err
		}
		role, err := format.ParseSpeakerRole(speakerRole)
		if err != nil || !f.SeatBelongsTo(role, t) {
			return invalidRoleFor(string(t))
		}

		if _, err := tx.Participant.FindByRoomAndRole(ctx, room.ID, string(role)); err == nil {
			return ErrSeatTaken
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}
		if _, err := tx.Participant.FindByRoomAndUser(ctx, room.ID, userID); err == nil {
			return ErrAlreadyJoined
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}

		participant = &models.Participant{
			RoomID:      room.ID,
			UserID:      userID,
			Team:        string(t),
			SpeakerRole: string(role),
			IsReady:     false,
			JoinedAt:    s.now(),
		}
		if err := tx.Participant.Create(ctx, participant); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrSeatTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventParticipantJoined, room.ID, participant)
	log.Audit(ctx, "room.join", userID, room.ID, "participant joined as "+participant.SpeakerRole)
	return participant, nil
}

// LeaveRoom 只允許在等待階段離開
func (s *RoomService) LeaveRoom(ctx context.Context, userID, roomID uint) error {
	var room *models.Room
	var participant *models.Participant
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if room.Status != models.RoomStatusWaiting {
			return ErrLeaveNotAllowed
		}
		participant, err = tx.Participant.FindByRoomAndUser(ctx, roomID, userID)
		if err != nil {
			return notFoundAs(err, ErrParticipantNotFound)
		}
		return tx.Participant.Delete(ctx, participant)
	})
	if err != nil {
		return err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventParticipantLeft, roomID, participant)
	log.Audit(ctx, "room.leave", userID, roomID, "participant left")
	return nil
}

// SetReady 切換準備狀態；重複設定相同值不會寫入
func (s *RoomService) SetReady(ctx context.Context, userID, roomID uint, ready bool) (*models.Participant, error) {
	var room *models.Room
	var participant *models.Participant
	changed := false
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if room.Status != models.RoomStatusWaiting {
			return ErrReadyNotAllowed
		}
		participant, err = tx.Participant.FindByRoomAndUser(ctx, roomID, userID)
		if err != nil {
			return notFoundAs(err, ErrParticipantNotFound)
		}
		if participant.IsReady == ready {
			return nil
		}
		participant.IsReady = ready
		changed = true
		return tx.Participant.Update(ctx, participant)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.snapshots.invalidate(ctx, room)
		emit(ctx, s.notifier, models.EventParticipantReady, roomID, participant)
	}
	return participant, nil
}

// StartDebate 只有房主可以開始；允許席位未滿，但在場的人都必須準備好
func (s *RoomService) StartDebate(ctx context.Context, userID, roomID uint) (*models.Room, error) {
	var room *models.Room
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if room.CreatorID != userID {
			return ErrNotCreator
		}
		if room.Status != models.RoomStatusWaiting {
			return ErrAlreadyStarted
		}
		if room.MotionID == nil {
			return ErrNoMotion
		}

		participants, err := tx.Participant.ListByRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if len(participants) == 0 {
			return ErrNotAllReady
		}
		for _, p := range participants {
			if !p.IsReady {
				return ErrNotAllReady
			}
		}

		now := s.now()
		room.Status = models.RoomStatusInProgress
		room.CurrentPhase = models.RoomPhaseDebate
		room.CurrentSpeakerIndex = 0
		room.StartedAt = &now
		return tx.Room.Update(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventDebateStarted, roomID, room)
	s.announceSpeaker(ctx, room)
	log.Audit(ctx, "room.start", userID, roomID, "debate started")
	return room, nil
}

// AdvanceSpeaker 前進到下一個發言格；固定走完全部八格，不因空席位跳過
func (s *RoomService) AdvanceSpeaker(ctx context.Context, userID, roomID uint) (*AdvanceResult, error) {
	var room *models.Room
	result := &AdvanceResult{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if room.Status != models.RoomStatusInProgress {
			return ErrDebateNotInProgress
		}
		if room.CreatorID != userID {
			if _, err := tx.Participant.FindByRoomAndUser(ctx, roomID, userID); err != nil {
				return notFoundAs(err, ErrAdvanceForbidden)
			}
		}
		if _, err := tx.Speech.FindOpenByRoom(ctx, roomID); err == nil {
			return ErrSpeechStillOpen
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}

		f, err := formatOf(room)
		if err != nil {
			return err
		}

		next := room.CurrentSpeakerIndex + 1
		if next > f.LastIndex() {
			now := s.now()
			room.Status = models.RoomStatusCompleted
			room.CurrentPhase = models.RoomPhaseFeedback
			room.EndedAt = &now
			result.Completed = true
		} else {
			room.CurrentSpeakerIndex = next
			result.NextSpeakerIndex = &next
		}
		return tx.Room.Update(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	s.snapshots.invalidate(ctx, room)
	if result.Completed {
		emit(ctx, s.notifier, models.EventDebateCompleted, roomID, room)
		s.notifier.Announce(ctx, roomID, "The debate has concluded. Thank you all for participating. Generating feedback now.")
		log.Audit(ctx, "room.complete", userID, roomID, "debate completed")

		if s.feedback != nil {
			bg := context.WithoutCancel(ctx)
			s.runAsync(func() {
				if err := s.feedback.Generate(bg, roomID); err != nil {
					log.Ctx(bg).Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("feedback generation failed")
				}
			})
		}
		return result, nil
	}

	emit(ctx, s.notifier, models.EventSpeakerAdvanced, roomID, result)
	s.announceSpeaker(ctx, room)
	log.Audit(ctx, "room.advance", userID, roomID, fmt.Sprintf("advanced to speaker %d", room.CurrentSpeakerIndex))
	return result, nil
}

// CancelRoom 房主取消尚未開始的房間
func (s *RoomService) CancelRoom(ctx context.Context, userID, roomID uint) (*models.Room, error) {
	var room *models.Room
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if room.CreatorID != userID {
			return ErrCancelNotCreator
		}
		if room.Status != models.RoomStatusWaiting {
			return ErrCancelNotWaiting
		}
		now := s.now()
		room.Status = models.RoomStatusCancelled
		room.CurrentPhase = models.RoomPhaseCompleted
		room.EndedAt = &now
		return tx.Room.Update(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventDebateCancelled, roomID, room)
	log.Audit(ctx, "room.cancel", userID, roomID, "room cancelled")
	return room, nil
}

// GetRoom 取得房間快照，優先讀取快取
func (s *RoomService) GetRoom(ctx context.Context, roomID uint) (*models.RoomSnapshot, error) {
	if snapshot, ok := s.snapshots.byID(ctx, roomID); ok {
		return snapshot, nil
	}

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFoundAs(err, ErrRoomNotFound)
	}
	return s.loadSnapshot(ctx, room)
}

// GetRoomByCode 房間代碼不分大小寫
func (s *RoomService) GetRoomByCode(ctx context.Context, roomCode string) (*models.RoomSnapshot, error) {
	code, err := utils.NormalizeRoomCode(roomCode)
	if err != nil {
		return nil, ErrInvalidRoomCode
	}
	if snapshot, ok := s.snapshots.byCode(ctx, code); ok {
		return snapshot, nil
	}

	room, err := s.repos.Room.FindByCode(ctx, code)
	if err != nil {
		return nil, notFoundAs(err, ErrRoomNotFound)
	}
	return s.loadSnapshot(ctx, room)
}

func (s *RoomService) loadSnapshot(ctx context.Context, room *models.Room) (*models.RoomSnapshot, error) {
	snapshot, err := s.buildSnapshot(ctx, room)
	if err != nil {
		return nil, err
	}
	s.snapshots.set(ctx, snapshot)
	return snapshot, nil
}

func (s *RoomService) buildSnapshot(ctx context.Context, room *models.Room) (*models.RoomSnapshot, error) {
	f, err := formatOf(room)
	if err != nil {
		return nil, err
	}

	participants, err := s.repos.Participant.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.RoomSnapshot{
		Room:         *room,
		Participants: participants,
	}

	if room.MotionID != nil {
		motion, err := s.repos.Motion.FindByID(ctx, *room.MotionID)
		if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			return nil, err
		}
		snapshot.Motion = motion
	}

	occupied := make(map[format.SpeakerRole]bool, len(participants))
	bySeat := make(map[format.SpeakerRole]*models.Participant, len(participants))
	for i := range participants {
		role := format.SpeakerRole(participants[i].SpeakerRole)
		occupied[role] = true
		bySeat[role] = &participants[i]
	}
	snapshot.ActiveSpeakingOrder = f.ActiveSpeakingOrder(occupied)

	if room.Status == models.RoomStatusInProgress {
		if slot, ok := f.SlotAt(room.CurrentSpeakerIndex); ok {
			snapshot.CurrentSlot = &slot
			snapshot.CurrentSpeaker = bySeat[f.SeatFor(slot.Role)]
		}

		speech, err := s.repos.Speech.FindOpenByRoom(ctx, room.ID)
		if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			return nil, err
		}
		snapshot.OpenSpeech = speech
	}

	return snapshot, nil
}

// ListWaitingRooms 大廳中等待開始的房間，新的在前
func (s *RoomService) ListWaitingRooms(ctx context.Context) ([]models.Room, error) {
	return s.repos.Room.ListByStatus(ctx, models.RoomStatusWaiting)
}

// announceSpeaker 播報目前發言者；席位無人時不播報
func (s *RoomService) announceSpeaker(ctx context.Context, room *models.Room) {
	f, err := formatOf(room)
	if err != nil {
		return
	}
	slot, speaker, err := currentSpeaker(ctx, s.repos, room, f)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint(log.FieldRoomID, room.ID).Msg("resolve current speaker failed")
		return
	}
	if speaker == nil {
		return
	}
	s.notifier.Announce(ctx, room.ID, speakerAnnouncement(slot, speaker.User.DisplayName()))
}

func speakerAnnouncement(slot format.Slot, name string) string {
	minutes := slot.AllottedTime / 60
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("%s, %s, you have %d %s. Please begin when ready.", slot.Label, name, minutes, unit)
}
