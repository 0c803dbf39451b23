package models

import "time"

// Post represents a single blog entry.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	AuthorID  string    `json:"authorId"`
	Author    *Author   `json:"author,omitempty"`
	Image     *Image    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Author is the subset of user data embedded in post responses.
type Author struct {
	Name string `json:"name"`
}

// Image is a media asset hosted externally. PostID is empty until the asset
// is attached to a post.
type Image struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// UploadResult is the metadata relayed back from the media host after a
// successful upload.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}
