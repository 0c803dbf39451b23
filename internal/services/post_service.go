package services

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/sarthakdev/medium-be/internal/models"
)

// PageSize is the fixed number of posts returned per list page.
const PageSize = 10

// psql builds queries with PostgreSQL-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostServiceProvider defines the interface for blog post services.
type PostServiceProvider interface {
	CreatePost(ctx context.Context, post models.Post, image *models.Image) (string, error)
	GetPostByID(ctx context.Context, id string) (models.Post, error)
	ListPosts(ctx context.Context, page int) ([]models.Post, error)
	UpdatePost(ctx context.Context, id, title, content string) (models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// PostService provides business logic for blog posts.
type PostService struct {
	db *sql.DB
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{db: db}
}

// CreatePost inserts a new post. When an image is supplied, the post insert
// and the image attachment run in one transaction: either both persist or
// neither does. An image uploaded earlier through the media endpoint is
// attached by its public id; otherwise a fresh image row is inserted.
func (s *PostService) CreatePost(ctx context.Context, post models.Post, image *models.Image) (string, error) {
	post.ID = uuid.New().String()

	insertPost := psql.Insert("posts").
		Columns("id", "title", "content", "published", "author_id").
		Values(post.ID, post.Title, post.Content, post.Published, post.AuthorID)

	if image == nil {
		query, args, err := insertPost.ToSql()
		if err != nil {
			return "", err
		}
		if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
			return "", err
		}
		return post.ID, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	query, args, err := insertPost.ToSql()
	if err != nil {
		return "", err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return "", err
	}

	if err = attachImage(ctx, tx, post.ID, image); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return post.ID, nil
}

// attachImage links an already-uploaded image row to the post, or inserts a
// new row when the public id has not been recorded yet.
func attachImage(ctx context.Context, tx *sql.Tx, postID string, image *models.Image) error {
	query, args, err := psql.Update("images").
		Set("post_id", postID).
		Where(sq.Eq{"public_id": image.PublicID, "post_id": nil}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}

	query, args, err = psql.Insert("images").
		Columns("id", "post_id", "url", "public_id").
		Values(uuid.New().String(), postID, image.URL, image.PublicID).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// selectPosts is the shared projection for single and paginated reads: the
// post columns plus the author's name and an optional attached image.
func selectPosts() sq.SelectBuilder {
	return psql.Select(
		"p.id", "p.title", "p.content", "p.published", "p.author_id",
		"u.name", "i.id", "i.url", "i.public_id",
		"p.created_at", "p.updated_at").
		From("posts p").
		Join("users u ON u.id = p.author_id").
		LeftJoin("images i ON i.post_id = p.id")
}

// scanPost scans one row of the selectPosts projection.
func scanPost(row sq.RowScanner) (models.Post, error) {
	var (
		post        models.Post
		author      models.Author
		imgID       sql.NullString
		imgURL      sql.NullString
		imgPublicID sql.NullString
	)
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.Published, &post.AuthorID,
		&author.Name, &imgID, &imgURL, &imgPublicID,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}

	post.Author = &author
	if imgID.Valid {
		post.Image = &models.Image{
			ID:       imgID.String,
			URL:      imgURL.String,
			PublicID: imgPublicID.String,
		}
	}
	return post, nil
}

// GetPostByID retrieves a single post with its author name and image.
func (s *PostService) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	query, args, err := selectPosts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return models.Post{}, err
	}

	post, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrNotFound
	}
	return post, err
}

// ListPosts returns one page of posts in creation order. page is 1-based;
// values below 1 are treated as 1.
func (s *PostService) ListPosts(ctx context.Context, page int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}

	query, args, err := selectPosts().
		OrderBy("p.created_at").
		Limit(PageSize).
		Offset(uint64((page - 1) * PageSize)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpdatePost persists new title and content for a post and returns the
// updated post with its author name. Merging omitted fields onto the existing
// values is the caller's job.
func (s *PostService) UpdatePost(ctx context.Context, id, title, content string) (models.Post, error) {
	query, args, err := psql.Update("posts").
		Set("title", title).
		Set("content", content).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Post{}, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Post{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Post{}, err
	} else if n == 0 {
		return models.Post{}, ErrNotFound
	}

	return s.GetPostByID(ctx, id)
}

// DeletePost removes a post. Any attached image row is removed by the
// ON DELETE CASCADE constraint.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	query, args, err := psql.Delete("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
