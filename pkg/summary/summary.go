package summary

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"vinearchive/pkg/vine"
)

// NA is written for any field the records do not carry
const NA = "N/A"

// Field is one "key: value" line of an info file
type Field struct {
	Key   string
	Value interface{}
}

// Render writes fields as "key: value" lines, one per field
func Render(fields []Field) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(FormatValue(f.Value))
		b.WriteByte('\n')
	}
	return b.String()
}

// UserFields merges the profile record and the auxiliary record in the
// order they appear in <username>_info.txt
func UserFields(profile *vine.Profile, info vine.UserInfo) []Field {
	userID := profile.UserID
	if userID == nil && profile.UserIDStr != "" {
		userID = profile.UserIDStr
	}

	return []Field{
		{"Status", profile.Status},
		{"Vanity URLs", profile.VanityURLs},
		{"Created", profile.Created},
		{"User ID", userID},
		{"Posts Count", profile.PostCount},
		{"Share URL", profile.ShareURL},
		{"Loop Count", info.LoopCount},
		{"Description", info.Description},
		{"Twitter Screenname", info.TwitterScreenname},
		{"Location", info.Location},
		{"Avatar URL", info.AvatarURL},
		{"Follower Count", info.FollowerCount},
	}
}

// PostFields lists the lines of <id>_post_data.txt
func PostFields(post *vine.Post) []Field {
	return []Field{
		{"Description", post.Description},
		{"Likes", post.Likes},
		{"Reposts", post.Reposts},
		{"Loops", post.Loops},
		{"Title", post.Title()},
	}
}

// FormatUserInfo renders the user info file
func FormatUserInfo(profile *vine.Profile, info vine.UserInfo) string {
	return Render(UserFields(profile, info))
}

// FormatPost renders the post info file
func FormatPost(post *vine.Post) string {
	return Render(PostFields(post))
}

// FormatValue renders a decoded JSON value for an info file.
// Missing values and empty strings become NA; lists are comma separated.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return NA
	case string:
		if val == "" {
			return NA
		}
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []string:
		if len(val) == 0 {
			return NA
		}
		return strings.Join(val, ", ")
	case []interface{}:
		if len(val) == 0 {
			return NA
		}
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
