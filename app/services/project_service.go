package services

import (
	"context"
	"regexp"
	"strings"

	"tasktime/app/models"
	"tasktime/app/store"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ProjectService handles project-related operations.
type ProjectService struct {
	base
}

// NewProjectService creates a new instance of ProjectService.
func NewProjectService(st store.Store) *ProjectService {
	return &ProjectService{base: newBase(st)}
}

// GetProjects lists the user's projects.
func (s *ProjectService) GetProjects(ctx context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.ListProjects(ctx, userID)
		return err
	})
	return out, err
}

// GetProjectByID retrieves a single project owned by the user.
func (s *ProjectService) GetProjectByID(ctx context.Context, userID, projectID string) (*models.Project, error) {
	var out *models.Project
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		out, err = ownedProject(ctx, tx, userID, projectID)
		return err
	})
	return out, err
}

// CreateProject validates and inserts a project. The color defaults to DefaultProjectColor.
func (s *ProjectService) CreateProject(ctx context.Context, userID string, in ProjectInput) (*models.Project, error) {
	name, err := requiredName("name", in.Name, maxProjectName)
	if err != nil {
		return nil, err
	}
	color, err := projectColor(in.Color)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &models.Project{
		ID:        s.newID(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.store.Write(ctx, func(tx store.Tx) error {
		return tx.CreateProject(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject applies the name and color set in the input.
func (s *ProjectService) UpdateProject(ctx context.Context, userID, projectID string, in ProjectInput) (*models.Project, error) {
	var p *models.Project
	err := s.store.Write(ctx, func(tx store.Tx) error {
		var err error
		p, err = ownedProject(ctx, tx, userID, projectID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if p.Name, err = requiredName("name", in.Name, maxProjectName); err != nil {
				return err
			}
		}
		if in.Color != nil {
			if p.Color, err = projectColor(in.Color); err != nil {
				return err
			}
		}
		p.UpdatedAt = s.now()
		return tx.UpdateProject(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes a project. Tasks and time entries that pointed at it
// are kept with no project.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID string) error {
	return s.store.Write(ctx, func(tx store.Tx) error {
		if _, err := ownedProject(ctx, tx, userID, projectID); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, projectID)
	})
}

func projectColor(c *string) (string, error) {
	if c == nil || strings.TrimSpace(*c) == "" {
		return models.DefaultProjectColor, nil
	}
	color := strings.TrimSpace(*c)
	if !colorPattern.MatchString(color) {
		return "", invalid("color", "enter a hex color such as %s", models.DefaultProjectColor)
	}
	return color, nil
}

func ownedProject(ctx context.Context, tx store.Tx, userID, projectID string) (*models.Project, error) {
	p, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err)
	}
	if p.UserID != userID {
		return nil, ErrNotFound
	}
	return p, nil
}
