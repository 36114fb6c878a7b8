package service

import (
	"context"
	"errors"
	"strings"

	"debate_room/internal/format"
	"debate_room/internal/models"
	"debate_room/internal/repository"
	"debate_room/internal/utils"
	"debate_room/pkg/log"

	"golang.org/x/crypto/bcrypt"
)

// ProfileUpdate 只更新非 nil 的欄位
type ProfileUpdate struct {
	Name            *string
	Bio             *string
	ExperienceLevel *string
}

// HistoryEntry 用戶參與過的一場辯論
type HistoryEntry struct {
	Room      models.Room         `json:"room"`
	IsCreator bool                `json:"isCreator"`
	Seat      *models.Participant `json:"seat"`
}

type UserService struct {
	repos *repository.Repositories
}

func NewUserService(repos *repository.Repositories) *UserService {
	return &UserService{repos: repos}
}

// Register 建立用戶，密碼以 bcrypt 雜湊儲存
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	if _, err := s.repos.User.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:        username,
		Password:        string(hashed),
		Name:            username,
		ExperienceLevel: string(format.ExperienceNovice),
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	log.Audit(ctx, "user.register", user.ID, 0, "user registered")
	return user, nil
}

// Login 驗證帳號密碼並回傳 JWT
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.repos.User.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, notFoundAs(err, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ExperienceLevel != nil {
		level, err := format.ParseExperienceLevel(*update.ExperienceLevel)
		if err != nil {
			return nil, ErrInvalidExperience
		}
		user.ExperienceLevel = string(level)
	}

	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DebateHistory 用戶建立或參與過的房間，新的在前
func (s *UserService) DebateHistory(ctx context.Context, userID uint) ([]HistoryEntry, error) {
	rooms, err := s.repos.Room.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seats, err := s.repos.Participant.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byRoom := make(map[uint]*models.Participant, len(seats))
	for i := range seats {
		byRoom[seats[i].RoomID] = &seats[i]
	}

	history := make([]HistoryEntry, 0, len(rooms))
	for _, room := range rooms {
		history = append(history, HistoryEntry{
			Room:      room,
			IsCreator: room.CreatorID == userID,
			Seat:      byRoom[room.ID],
		})
	}
	return history, nil
}
