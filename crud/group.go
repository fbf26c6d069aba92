package crud

import (
	"strings"

	"gorm.io/gorm"

	"yatube/domain"
	"yatube/errs"
)

// GroupService manages Groups.
// It implements the domain.GroupService interface.
type GroupService struct {
	groupValidator
}

// groupValidator runs validations on incoming Group data.
// On success, it passes the data on to groupGorm.
type groupValidator struct {
	groupGorm
}

// groupGorm runs CRUD operations on the database using incoming Group data.
type groupGorm struct {
	db *gorm.DB
}

// NewGroupService returns an instance of GroupService.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{
		groupValidator{
			groupGorm{
				db: db,
			},
		},
	}
}

var _ domain.GroupService = &GroupService{}

// Create runs validations needed for creating new Group database records.
func (gv *groupValidator) Create(group *domain.Group) error {
	err := runGroupValFns(group,
		gv.normalize,
		gv.titleRequired,
		gv.slugRequired,
		gv.slugIsAvail)
	if err != nil {
		return err
	}
	return gv.groupGorm.Create(group)
}

func runGroupValFns(group *domain.Group, fns ...groupValFn) error {
	for _, fn := range fns {
		if err := fn(group); err != nil {
			return err
		}
	}
	return nil
}

type groupValFn func(group *domain.Group) error

func (gv *groupValidator) normalize(group *domain.Group) error {
	group.Title = strings.TrimSpace(group.Title)
	group.Slug = strings.TrimSpace(group.Slug)
	group.Description = strings.TrimSpace(group.Description)
	return nil
}

func (gv *groupValidator) titleRequired(group *domain.Group) error {
	if group.Title == "" {
		return errs.FieldErrorf(errs.EINVALID, "title", "A title is required.")
	}
	return nil
}

func (gv *groupValidator) slugRequired(group *domain.Group) error {
	if group.Slug == "" {
		return errs.FieldErrorf(errs.EINVALID, "slug", "A slug is required.")
	}
	return nil
}

// slugIsAvail makes sure that no other group uses the slug.
func (gv *groupValidator) slugIsAvail(group *domain.Group) error {
	existing, err := gv.groupGorm.BySlug(group.Slug)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != group.ID {
		return errs.FieldErrorf(errs.EINVALID, "slug", "A group with this slug already exists.")
	}
	return nil
}

// ByID retrieves a single Group by ID.
func (gg *groupGorm) ByID(id int) (*domain.Group, error) {
	var group domain.Group
	if err := first(gg.db.Where("id = ?", id), &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// BySlug retrieves a single Group by its slug.
func (gg *groupGorm) BySlug(slug string) (*domain.Group, error) {
	var group domain.Group
	if err := first(gg.db.Where("slug = ?", slug), &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// All returns every group ordered by title, for the group select of the post form.
func (gg *groupGorm) All() ([]domain.Group, error) {
	var groups []domain.Group
	if err := gg.db.Order("title asc").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Create stores the data from the Group object in a new database record.
func (gg *groupGorm) Create(group *domain.Group) error {
	return translate(gg.db.Create(group).Error, "slug", "A group with this slug already exists.")
}
