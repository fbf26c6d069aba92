package crud

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/domain"
	"yatube/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(comment *domain.Comment) error {
	err := runCommentValFns(comment,
		cv.authorIdValid,
		cv.textRequired,
		cv.commentedPostExists)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(comment)
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(comment *domain.Comment) error

// commentedPostExists makes sure that the post to be commented on actually exists.
func (cv *commentValidator) commentedPostExists(comment *domain.Comment) error {
	var post domain.Post
	return first(cv.db.Select("id").Where("id = ?", comment.PostID), &post)
}

// textRequired makes sure that the comment is not blank.
func (cv *commentValidator) textRequired(comment *domain.Comment) error {
	if strings.TrimSpace(comment.Text) == "" {
		return errs.FieldErrorf(errs.EINVALID, "text", "Comment text must not be empty.")
	}
	return nil
}

// authorIdValid ensures that the comment has an author.
func (cv *commentValidator) authorIdValid(comment *domain.Comment) error {
	if comment.AuthorID <= 0 {
		return errs.UserIdValid
	}
	return nil
}

// ByPost retrieves the comments of a post, newest first, along with their authors.
func (cg *commentGorm) ByPost(postID int) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := cg.db.
		Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at desc").
		Order("id desc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Create stores the data from the Comment object in a new database record.
// On success, it loads the comment's author for rendering.
func (cg *commentGorm) Create(comment *domain.Comment) error {
	if err := cg.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return err
	}
	return cg.db.Preload("Author").First(comment, comment.ID).Error
}
