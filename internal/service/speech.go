package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"debate_room/internal/ai"
	"debate_room/internal/format"
	"debate_room/internal/models"
	"debate_room/internal/repository"
	"debate_room/pkg/log"
)

const (
	defaultGraceSeconds = 30
	defaultStaleAfter   = 10 * time.Minute
)

// TranscribeInput 一段以 base64 編碼的錄音
type TranscribeInput struct {
	Audio    string
	MimeType string
	Language string
	// Timestamp 客戶端計時器的秒數；nil 時以伺服器時間計算
	Timestamp *int
}

// TranscribeResult 轉錄失敗的片段只會被丟棄，不影響發言
type TranscribeResult struct {
	Dropped   bool                      `json:"dropped"`
	ErrorCode ai.TranscriptionErrorCode `json:"errorCode,omitempty"`
	Segment   *models.TranscriptSegment `json:"segment,omitempty"`
}

// SpeechService 管理每個房間唯一一個進行中的發言與其質詢、逐字稿
type SpeechService struct {
	repos        *repository.Repositories
	snapshots    *SnapshotCache
	notifier     Notifier
	transcriber  ai.Transcriber
	graceSeconds int
	staleAfter   time.Duration
	now          func() time.Time
}

func NewSpeechService(repos *repository.Repositories, snapshots *SnapshotCache, notifier Notifier, transcriber ai.Transcriber, graceSeconds int, staleAfter time.Duration) *SpeechService {
	if graceSeconds <= 0 {
		graceSeconds = defaultGraceSeconds
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &SpeechService{
		repos:        repos,
		snapshots:    snapshots,
		notifier:     notifier,
		transcriber:  transcriber,
		graceSeconds: graceSeconds,
		staleAfter:   staleAfter,
		now:          time.Now,
	}
}

// StartSpeech 只有目前發言格對應的參與者可以開始發言；speakerRole 為空時使用目前的發言格
func (s *SpeechService) StartSpeech(ctx context.Context, userID, roomID uint, speakerRole string) (*models.Speech, error) {
	var room *models.Room
	var speech *models.Speech
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if room.Status != models.RoomStatusInProgress {
			return ErrDebateNotInProgress
		}
		if _, err := tx.Speech.FindOpenByRoom(ctx, roomID); err == nil {
			return ErrSpeechAlreadyOpen
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}

		f, err := formatOf(room)
		if err != nil {
			return err
		}
		slot, speaker, err := currentSpeaker(ctx, tx, room, f)
		if err != nil {
			return err
		}
		if speaker == nil || speaker.UserID != userID {
			return ErrNotCurrentSpeaker
		}
		if speakerRole != "" && speakerRole != string(slot.Role) {
			return ErrNotCurrentSpeaker
		}
		// 發言結束後必須先換下一位，不能重講同一格
		given, err := tx.Speech.ExistsForSlot(ctx, roomID, string(slot.Role))
		if err != nil {
			return err
		}
		if given {
			return ErrSpeechAlreadyGiven
		}

		speech = &models.Speech{
			RoomID:       roomID,
			SpeakerRole:  string(slot.Role),
			UserID:       userID,
			SpeechType:   string(format.SpeechTypeFor(slot.Role)),
			AllottedTime: slot.AllottedTime,
			StartedAt:    s.now(),
		}
		if err := tx.Speech.Create(ctx, speech); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrSpeechAlreadyGiven
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventSpeechStarted, roomID, speech)
	s.notifier.Announce(ctx, roomID, "Your time begins now.")
	log.Audit(ctx, "speech.start", userID, roomID, "speech started by "+speech.SpeakerRole)
	return speech, nil
}

// EndSpeech 記錄實際使用的秒數；只接受 0 到配給時間加寬限秒數
func (s *SpeechService) EndSpeech(ctx context.Context, userID, speechID uint, duration int) (*models.Speech, error) {
	existing, err := s.repos.Speech.FindByID(ctx, speechID)
	if err != nil {
		return nil, notFoundAs(err, ErrSpeechNotFound)
	}

	var room *models.Room
	var speech *models.Speech
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		room, err = tx.Room.FindByIDForUpdate(ctx, existing.RoomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		speech, err = tx.Speech.FindByID(ctx, speechID)
		if err != nil {
			return notFoundAs(err, ErrSpeechNotFound)
		}
		if speech.UserID != userID && room.CreatorID != userID {
			return ErrEndSpeechForbidden
		}
		if !speech.IsOpen() {
			return ErrSpeechClosed
		}
		if duration < 0 || duration > speech.AllottedTime+s.graceSeconds {
			return ErrInvalidDuration
		}

		now := s.now()
		speech.Duration = &duration
		speech.EndedAt = &now
		return tx.Speech.Update(ctx, speech)
	})
	if err != nil {
		return nil, err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventSpeechEnded, room.ID, speech)
	s.notifier.Announce(ctx, room.ID, "Thank you. Moving to the next speaker.")
	log.Audit(ctx, "speech.end", userID, room.ID, "speech ended")
	return speech, nil
}

// OfferPOI 對方隊伍在非保護時間內提出質詢；不會暫停計時
func (s *SpeechService) OfferPOI(ctx context.Context, userID, roomID, speechID uint, timestamp int) (*models.POI, error) {
	var poi *models.POI
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, err := tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		speech, err := tx.Speech.FindByID(ctx, speechID)
		if err != nil {
			return notFoundAs(err, ErrSpeechNotFound)
		}
		if speech.RoomID != roomID {
			return ErrSpeechNotFound
		}
		if !speech.IsOpen() {
			return ErrSpeechClosed
		}

		offerer, err := tx.Participant.FindByRoomAndUser(ctx, roomID, userID)
		if err != nil {
			return notFoundAs(err, ErrNotParticipant)
		}

		f, err := formatOf(room)
		if err != nil {
			return err
		}
		slot, ok := f.SlotFor(format.SpeakerRole(speech.SpeakerRole))
		if !ok {
			return ErrSpeechNotFound
		}
		if offerer.Team == string(slot.Team) {
			return ErrPOISameTeam
		}
		if !f.POIAllowed(timestamp, speech.AllottedTime) {
			return ErrPOIProtectedTime
		}

		poi = &models.POI{
			RoomID:    roomID,
			SpeechID:  speechID,
			OffererID: userID,
			Team:      offerer.Team,
			Timestamp: timestamp,
		}
		return tx.POI.Create(ctx, poi)
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, models.EventPOIOffered, roomID, poi)
	s.notifier.Announce(ctx, roomID, "Point of information!")
	return poi, nil
}

// Transcribe 將一段錄音轉成逐字稿附加到進行中的發言；轉錄失敗只丟棄該片段
func (s *SpeechService) Transcribe(ctx context.Context, userID, speechID uint, input TranscribeInput) (*TranscribeResult, error) {
	speech, err := s.repos.Speech.FindByID(ctx, speechID)
	if err != nil {
		return nil, notFoundAs(err, ErrSpeechNotFound)
	}
	if speech.UserID != userID {
		return nil, ErrTranscribeForbidden
	}
	if !speech.IsOpen() {
		return nil, ErrSpeechClosed
	}

	audio, err := base64.StdEncoding.DecodeString(input.Audio)
	if err != nil {
		return nil, ErrInvalidAudio.Wrap(err)
	}

	l := log.Ctx(ctx).With().Uint(log.FieldSpeechID, speechID).Uint(log.FieldRoomID, speech.RoomID).Logger()

	if verr := ai.ValidateAudioSize(len(audio)); verr != nil {
		l.Warn().Str("code", string(verr.Code)).Msg(verr.Message)
		return &TranscribeResult{Dropped: true, ErrorCode: verr.Code}, nil
	}
	if s.transcriber == nil {
		l.Warn().Msg("transcriber not configured, dropping audio chunk")
		return &TranscribeResult{Dropped: true, ErrorCode: ai.CodeServiceError}, nil
	}

	transcription, err := s.transcriber.Transcribe(ctx, ai.TranscriptionRequest{
		Audio:    audio,
		MimeType: input.MimeType,
		Language: input.Language,
	})
	if err != nil {
		code := ai.CodeServiceError
		var terr *ai.TranscriptionError
		if errors.As(err, &terr) {
			code = terr.Code
		}
		l.Warn().Err(err).Str("code", string(code)).Msg("transcription failed, dropping audio chunk")
		return &TranscribeResult{Dropped: true, ErrorCode: code}, nil
	}

	text := strings.TrimSpace(transcription.Text)
	if text == "" {
		return &TranscribeResult{}, nil
	}

	offset := speech.Elapsed(s.now())
	if input.Timestamp != nil && *input.Timestamp >= 0 {
		offset = *input.Timestamp
	}
	segment := &models.TranscriptSegment{
		SpeechID:      speechID,
		Offset:        offset,
		Text:          text,
		Language:      transcription.Language,
		AudioDuration: transcription.Duration,
	}
	if err := s.repos.Speech.AppendSegment(ctx, segment); err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, models.EventTranscriptAppended, speech.RoomID, segment)
	return &TranscribeResult{Segment: segment}, nil
}

// ListSpeeches 房間的所有發言與逐字稿
func (s *SpeechService) ListSpeeches(ctx context.Context, roomID uint) ([]models.Speech, error) {
	if _, err := s.repos.Room.FindByID(ctx, roomID); err != nil {
		return nil, notFoundAs(err, ErrRoomNotFound)
	}
	return s.repos.Speech.ListByRoom(ctx, roomID)
}

// SweepStale 關閉超過配給時間加 staleAfter 仍未結束的發言，duration 記為配給時間；不會前進發言者
func (s *SpeechService) SweepStale(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.repos.Speech.ListOpenStartedBefore(ctx, now.Add(-s.staleAfter))
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, c := range candidates {
		deadline := c.StartedAt.Add(time.Duration(c.AllottedTime)*time.Second + s.staleAfter)
		if !now.After(deadline) {
			continue
		}

		var room *models.Room
		var speech *models.Speech
		err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			var err error
			room, err = tx.Room.FindByIDForUpdate(ctx, c.RoomID)
			if err != nil {
				return err
			}
			speech, err = tx.Speech.FindByID(ctx, c.ID)
			if err != nil {
				return err
			}
			if !speech.IsOpen() {
				speech = nil
				return nil
			}
			duration := speech.AllottedTime
			speech.Duration = &duration
			speech.EndedAt = &now
			return tx.Speech.Update(ctx, speech)
		})
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Uint(log.FieldSpeechID, c.ID).Msg("close stale speech failed")
			continue
		}
		if speech == nil {
			continue
		}

		closed++
		s.snapshots.invalidate(ctx, room)
		emit(ctx, s.notifier, models.EventSpeechEnded, room.ID, speech)
		log.Ctx(ctx).Info().Uint(log.FieldSpeechID, speech.ID).Uint(log.FieldRoomID, room.ID).Msg("stale speech closed")
	}
	return closed, nil
}

// RunSweeper 週期性執行 SweepStale 直到 ctx 結束；interval <= 0 時不啟動
func (s *SpeechService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepStale(ctx); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("stale speech sweep failed")
			}
		}
	}
}
