package services

import (
	"context"
	"errors"

	"tasktime/app/models"
	"tasktime/app/store"
)

// TagService handles tag-related operations. Tag names are unique per user.
type TagService struct {
	base
}

// NewTagService creates a new instance of TagService.
func NewTagService(st store.Store) *TagService {
	return &TagService{base: newBase(st)}
}

// GetTags lists the user's tags.
func (s *TagService) GetTags(ctx context.Context, userID string) ([]models.Tag, error) {
	var out []models.Tag
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.ListTags(ctx, userID)
		return err
	})
	return out, err
}

// GetTagByID retrieves a single tag owned by the user.
func (s *TagService) GetTagByID(ctx context.Context, userID, tagID string) (*models.Tag, error) {
	var out *models.Tag
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		out, err = ownedTag(ctx, tx, userID, tagID)
		return err
	})
	return out, err
}

// CreateTag inserts a tag whose name is unique for the user.
func (s *TagService) CreateTag(ctx context.Context, userID string, in TagInput) (*models.Tag, error) {
	name, err := requiredName("name", in.Name, maxTagName)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{
		ID:        s.newID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: s.now(),
	}
	err = s.store.Write(ctx, func(tx store.Tx) error {
		if err := uniqueTagName(ctx, tx, tag); err != nil {
			return err
		}
		return duplicateTag(tx.CreateTag(ctx, tag), name)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// UpdateTag renames a tag, keeping names unique per user.
func (s *TagService) UpdateTag(ctx context.Context, userID, tagID string, in TagInput) (*models.Tag, error) {
	var tag *models.Tag
	err := s.store.Write(ctx, func(tx store.Tx) error {
		var err error
		tag, err = ownedTag(ctx, tx, userID, tagID)
		if err != nil {
			return err
		}
		if in.Name == nil {
			return nil
		}
		if tag.Name, err = requiredName("name", in.Name, maxTagName); err != nil {
			return err
		}
		if err := uniqueTagName(ctx, tx, tag); err != nil {
			return err
		}
		return duplicateTag(tx.UpdateTag(ctx, tag), tag.Name)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes a tag and detaches it from tasks.
func (s *TagService) DeleteTag(ctx context.Context, userID, tagID string) error {
	return s.store.Write(ctx, func(tx store.Tx) error {
		if _, err := ownedTag(ctx, tx, userID, tagID); err != nil {
			return err
		}
		return tx.DeleteTag(ctx, tagID)
	})
}

func uniqueTagName(ctx context.Context, tx store.Tx, tag *models.Tag) error {
	other, err := tx.FindTag(ctx, tag.UserID, tag.Name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != tag.ID {
		return uniqueness("name", "a tag named %q already exists", tag.Name)
	}
	return nil
}

// duplicateTag turns a backend constraint failure into a validation error.
func duplicateTag(err error, name string) error {
	if errors.Is(err, store.ErrConflict) {
		return uniqueness("name", "a tag named %q already exists", name)
	}
	return err
}

func ownedTag(ctx context.Context, tx store.Tx, userID, tagID string) (*models.Tag, error) {
	tag, err := tx.GetTag(ctx, tagID)
	if err != nil {
		return nil, notFound(err)
	}
	if tag.UserID != userID {
		return nil, ErrNotFound
	}
	return tag, nil
}
