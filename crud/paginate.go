package crud

import (
	"gorm.io/gorm"

	"yatube/domain"
)

// A postScope narrows the posts table down to one listing, e.g. the posts of a group.
type postScope func(db *gorm.DB) *gorm.DB

// allPosts is the scope of the unfiltered listing.
func allPosts(db *gorm.DB) *gorm.DB {
	return db
}

// paginate counts the posts matched by scope, resolves the raw page number against
// that count and loads the posts of the resulting page, newest first.
// Each call re-queries the database; pages are never reused across calls.
func paginate(db *gorm.DB, scope postScope, raw string, perPage int) (*domain.Page, error) {
	var total int64
	if err := db.Model(&domain.Post{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}
	page := domain.NewPage(raw, total, perPage)
	if total == 0 {
		page.Posts = []domain.Post{}
		return page, nil
	}

	var posts []domain.Post
	err := db.
		Scopes(scope).
		Preload("Author").
		Preload("Group").
		Order("created_at desc").
		Order("id desc").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	page.Posts = posts
	return page, nil
}
