package crud

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/domain"
	"yatube/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Create runs validations needed for creating new Follow database records.
// Following an author twice is not an error: the existing Follow is returned instead.
func (fv *followValidator) Create(follow *domain.Follow) error {
	err := runFollowValFns(follow,
		fv.followerIdValid,
		fv.followedIsNotFollower,
		fv.followedUserExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Create(follow)
}

// Delete runs validations needed for deleting existing Follow database records.
func (fv *followValidator) Delete(follow *domain.Follow) error {
	if err := runFollowValFns(follow, fv.followerIdValid); err != nil {
		return err
	}
	return fv.followGorm.Delete(follow)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followerIdValid ensures that the follow has a follower.
func (fv *followValidator) followerIdValid(follow *domain.Follow) error {
	if follow.FollowerID <= 0 {
		return errs.UserIdValid
	}
	return nil
}

// followedIsNotFollower makes sure that users don't follow themselves.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.AuthorID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return nil
}

// followedUserExists makes sure that the user to be followed actually exists.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	var user domain.User
	return first(fv.db.Select("id").Where("id = ?", follow.AuthorID), &user)
}

// Exists reports whether follower follows author.
func (fg *followGorm) Exists(followerID, authorID int) (bool, error) {
	var count int64
	err := fg.db.
		Model(&domain.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the Follow unless the pair already exists, then loads the stored row.
// The unique (follower, author) index makes concurrent duplicates collapse into one row.
func (fg *followGorm) Create(follow *domain.Follow) error {
	err := fg.db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow).Error
	if err != nil {
		return err
	}
	var stored domain.Follow
	err = fg.db.
		Preload("Follower").
		Preload("Author").
		Where("follower_id = ? AND author_id = ?", follow.FollowerID, follow.AuthorID).
		First(&stored).Error
	if err != nil {
		return err
	}
	*follow = stored
	return nil
}

// Delete permanently deletes the Follow record of the (follower, author) pair.
// If the pair does not exist, it returns errs.ENOTFOUND.
func (fg *followGorm) Delete(follow *domain.Follow) error {
	result := fg.db.
		Where("follower_id = ? AND author_id = ?", follow.FollowerID, follow.AuthorID).
		Delete(&domain.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "You don't follow this user.")
	}
	return nil
}
