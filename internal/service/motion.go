package service

import (
	"context"

	"debate_room/internal/ai"
	"debate_room/internal/format"
	"debate_room/internal/models"
	"debate_room/internal/repository"
	"debate_room/internal/storage"
	"debate_room/pkg/log"
)

type MotionService struct {
	repos     *repository.Repositories
	snapshots *SnapshotCache
	notifier  Notifier
	generator ai.MotionGenerator
}

func NewMotionService(repos *repository.Repositories, snapshots *SnapshotCache, notifier Notifier, generator ai.MotionGenerator) *MotionService {
	return &MotionService{
		repos:     repos,
		snapshots: snapshots,
		notifier:  notifier,
		generator: generator,
	}
}

// GenerateMotion 由房主在開始前產生辯題；重新產生會建立新的 Motion 並更新房間指向
func (s *MotionService) GenerateMotion(ctx context.Context, userID, roomID uint, topicArea, difficulty string) (*models.Motion, error) {
	topic, err := format.ParseTopicArea(topicArea)
	if err != nil {
		return nil, ErrInvalidTopicArea
	}
	level, err := format.ParseDifficulty(difficulty)
	if err != nil {
		return nil, ErrInvalidDifficulty
	}

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFoundAs(err, ErrRoomNotFound)
	}
	if err := checkMotionAllowed(room, userID); err != nil {
		return nil, err
	}

	if s.generator == nil {
		return nil, ErrMotionGeneration.Wrap(ai.ErrNotConfigured)
	}
	generated, err := s.generator.GenerateMotion(ctx, topic, level)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Uint(log.FieldRoomID, roomID).Msg("motion generation failed")
		return nil, ErrMotionGeneration.Wrap(err)
	}

	motion := &models.Motion{
		RoomID:            roomID,
		Motion:            generated.Motion,
		BackgroundContext: generated.BackgroundContext,
		KeyStakeholders:   storage.StringArray(generated.KeyStakeholders),
		TopicArea:         string(topic),
		Difficulty:        string(level),
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		// AI 呼叫期間房間狀態可能已改變
		locked, err := tx.Room.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if err := checkMotionAllowed(locked, userID); err != nil {
			return err
		}
		if err := tx.Motion.Create(ctx, motion); err != nil {
			return err
		}
		locked.MotionID = &motion.ID
		room = locked
		return tx.Room.Update(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	s.snapshots.invalidate(ctx, room)
	emit(ctx, s.notifier, models.EventMotionSet, roomID, motion)
	log.Audit(ctx, "room.motion", userID, roomID, "motion set")
	return motion, nil
}

func checkMotionAllowed(room *models.Room, userID uint) error {
	if room.CreatorID != userID {
		return ErrMotionNotCreator
	}
	if room.Status != models.RoomStatusWaiting {
		return ErrMotionNotWaiting
	}
	return nil
}
