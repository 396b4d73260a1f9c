package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/app/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to a SQL database through GORM, creates missing tables and
// returns the repositories built on it. driver is "postgres" or "mysql".
func OpenGorm(driver, dsn, logLevel string, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	gLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  toGormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}

	return &Store{
		Posts:    NewGormPostRepository(db),
		Comments: NewGormCommentRepository(db),
		Users:    NewGormUserRepository(db),
		close:    sqlDB.Close,
	}, nil
}

// toGormLogLevel maps the application log level to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

func gormErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

// GormPostRepository implements PostRepository over a SQL database
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(post *models.Post) error {
	return gormErr(r.db.Omit(clause.Associations).Create(post).Error)
}

func (r *GormPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, gormErr(err)
	}
	return &post, nil
}

func (r *GormPostRepository) ListPublished(now time.Time) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.
		Where("published_at IS NOT NULL AND published_at <= ?", now).
		Order("published_at asc").Order("id asc").
		Find(&posts).Error
	return posts, gormErr(err)
}

func (r *GormPostRepository) ListDrafts() ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.
		Where("published_at IS NULL").
		Order("created_at asc").Order("id asc").
		Find(&posts).Error
	return posts, gormErr(err)
}

func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, post.ID).Error; err != nil {
			return gormErr(err)
		}
		return tx.Omit(clause.Associations).Save(post).Error
	})
}

// Delete removes the post and its comments in one transaction. The foreign key
// also cascades, the explicit delete keeps databases without it consistent.
func (r *GormPostRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, id).Error; err != nil {
			return gormErr(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// GormCommentRepository implements CommentRepository over a SQL database
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(comment *models.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, comment.PostID).Error; err != nil {
			return gormErr(err)
		}
		return tx.Create(comment).Error
	})
}

func (r *GormCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, gormErr(err)
	}
	return &comment, nil
}

func (r *GormCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.Where("post_id = ?", postID).Order("id asc").Find(&comments).Error
	return comments, gormErr(err)
}

func (r *GormCommentRepository) Update(comment *models.Comment) error {
	res := r.db.Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"author":   comment.Author,
			"text":     comment.Text,
			"approved": comment.Approved,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCommentRepository) Delete(id int) error {
	res := r.db.Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormUserRepository implements UserRepository over a SQL database
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.User{}).
			Where("LOWER(username) = ?", strings.ToLower(user.Username)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		return gormErr(tx.Create(user).Error)
	})
}

func (r *GormUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("LOWER(username) = ?", strings.ToLower(username)).First(&user).Error
	if err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}
