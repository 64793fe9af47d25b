package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
)

type GoalService struct {
	goalRepo *repository.GoalRepository
	hub      *realtime.Hub
}

func NewGoalService(goalRepo *repository.GoalRepository, hub *realtime.Hub) *GoalService {
	return &GoalService{goalRepo: goalRepo, hub: hub}
}

func (s *GoalService) Create(ctx context.Context, goal models.Goal) (models.Goal, error) {
	goal.Id = uuid.NewString()
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	for i := range goal.Milestones {
		goal.Milestones[i].Id = uuid.NewString()
		goal.Milestones[i].Done = false
		goal.Milestones[i].DoneAt = nil
	}

	if err := goal.Validate(); err != nil {
		return models.Goal{}, err
	}
	if goal.Frequency != "" {
		if _, err := ParseFrequency(goal.Frequency); err != nil {
			return models.Goal{}, err
		}
	}
	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return models.Goal{}, err
	}

	s.hub.Publish(realtime.Event{Collection: "goals", Action: realtime.ActionInsert, Id: goal.Id, Payload: goal})
	return goal, nil
}

func (s *GoalService) Get(ctx context.Context, id string) (models.Goal, error) {
	return s.goalRepo.Get(ctx, id)
}

func (s *GoalService) ListByChild(ctx context.Context, childId string) ([]models.Goal, error) {
	return s.goalRepo.ListByChild(ctx, childId)
}

// ToggleMilestone flips the done flag of the milestone at index, stamping
// or clearing done_at to match, and returns the refreshed goal.
func (s *GoalService) ToggleMilestone(ctx context.Context, goalId string, index int) (models.Goal, error) {
	goal, err := s.goalRepo.Get(ctx, goalId)
	if err != nil {
		return models.Goal{}, err
	}
	if index < 0 || index >= len(goal.Milestones) {
		return models.Goal{}, models.ValidationError{Field: "index", Message: "milestone index out of range"}
	}

	m := goal.Milestones[index]
	if m.Done {
		m.Done = false
		m.DoneAt = nil
	} else {
		now := time.Now().UTC()
		m.Done = true
		m.DoneAt = &now
	}

	if err := s.goalRepo.UpdateMilestone(ctx, m); err != nil {
		return models.Goal{}, err
	}
	goal.Milestones[index] = m

	s.hub.Publish(realtime.Event{Collection: "goals", Action: realtime.ActionUpdate, Id: goal.Id, Payload: goal})
	return goal, nil
}

// ParseFrequency maps a frequency string to the interval between milestone
// completions. Accepted: "daily", "weekly", "biweekly", "monthly" (30 days)
// and "every N days", case-insensitive.
func ParseFrequency(s string) (time.Duration, error) {
	const day = 24 * time.Hour

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return day, nil
	case "weekly":
		return 7 * day, nil
	case "biweekly":
		return 14 * day, nil
	case "monthly":
		return 30 * day, nil
	}

	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 3 && fields[0] == "every" && fields[2] == "days" {
		n, err := strconv.Atoi(fields[1])
		if err == nil && n > 0 {
			return time.Duration(n) * day, nil
		}
	}

	return 0, models.ValidationError{Field: "frequency", Message: fmt.Sprintf("unrecognized frequency %q", s)}
}

// TargetDate projects when the goal should finish: the start date advanced
// by one frequency interval per remaining milestone.
func TargetDate(goal models.Goal) (time.Time, error) {
	start, err := time.Parse("2006-01-02", goal.StartDate)
	if err != nil {
		return time.Time{}, models.ValidationError{Field: "start_date", Message: "invalid start date"}
	}
	if goal.Frequency == "" {
		return start, nil
	}

	interval, err := ParseFrequency(goal.Frequency)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(goal.Remaining()) * interval), nil
}
