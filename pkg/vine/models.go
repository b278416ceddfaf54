package vine

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
)

// Profile is the archived profile record of one user
type Profile struct {
	UserID     interface{} `json:"userId"`
	UserIDStr  string      `json:"userIdStr"`
	Username   string      `json:"username"`
	Status     interface{} `json:"status"`
	VanityURLs []string    `json:"vanityUrls"`
	Created    string      `json:"created"`
	PostCount  interface{} `json:"postCount"`
	ShareURL   string      `json:"shareUrl"`
	AvatarURL  string      `json:"avatarUrl"`
	Posts      []PostID    `json:"posts"`
}

// ID returns the numeric user ID as a string, preferring userIdStr
func (p *Profile) ID() string {
	if p.UserIDStr != "" {
		return p.UserIDStr
	}
	return idString(p.UserID)
}

// idString renders a decoded ID value, which may be a number or a string
func idString(v interface{}) string {
	switch id := v.(type) {
	case json.Number:
		return id.String()
	case string:
		return id
	default:
		return ""
	}
}

// UserInfo is the live-service record that enriches a profile.
// The zero value is the empty record.
type UserInfo struct {
	FollowerCount     interface{} `json:"followerCount"`
	Description       interface{} `json:"description"`
	Location          interface{} `json:"location"`
	AvatarURL         interface{} `json:"avatarUrl"`
	TwitterScreenname interface{} `json:"twitterScreenname"`
	LoopCount         interface{} `json:"loopCount"`
}

// IsEmpty reports whether no field was populated
func (u UserInfo) IsEmpty() bool {
	return u.FollowerCount == nil && u.Description == nil && u.Location == nil &&
		u.AvatarURL == nil && u.TwitterScreenname == nil && u.LoopCount == nil
}

// Post is the archived record of a single post
type Post struct {
	Description  interface{} `json:"description"`
	Likes        interface{} `json:"likes"`
	Reposts      interface{} `json:"reposts"`
	Loops        interface{} `json:"loops"`
	Entities     []Entity    `json:"entities"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	VideoURL     string      `json:"videoUrl"`
	VideoLowURL  string      `json:"videoLowURL"`
}

// Entity is an element of a post's entity list
type Entity struct {
	Title interface{} `json:"title"`
}

// Video returns the video URL, falling back to the low quality rendition.
// An empty result means the post has no video.
func (p *Post) Video() string {
	if p.VideoURL != "" {
		return p.VideoURL
	}
	return p.VideoLowURL
}

// Title returns the title carried by the first entity, or nil
func (p *Post) Title() interface{} {
	if len(p.Entities) == 0 {
		return nil
	}
	return p.Entities[0].Title
}

// PostID identifies a post. The archive lists IDs as strings but numbers are
// accepted too.
type PostID string

// UnmarshalJSON accepts both JSON strings and JSON numbers
func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = PostID(n.String())
	return nil
}

// String returns the ID as a string
func (id PostID) String() string {
	return string(id)
}

// IsNumericID reports whether every character of token is a decimal digit
func IsNumericID(token string) bool {
	if token == "" {
		return false
	}
	return strings.IndexFunc(token, func(r rune) bool {
		return r < '0' || r > '9'
	}) == -1
}

// envelope wraps live-service responses
type envelope[T any] struct {
	Data T `json:"data"`
}

// vanityLookup is the payload of the vanity endpoint
type vanityLookup struct {
	UserIDStr string      `json:"userIdStr"`
	UserID    interface{} `json:"userId"`
}

func (v vanityLookup) id() string {
	if v.UserIDStr != "" {
		return v.UserIDStr
	}
	return idString(v.UserID)
}
