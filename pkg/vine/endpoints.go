package vine

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// ProfileEndpoint is the archive path pattern for a profile record
	ProfileEndpoint = "/profiles/_/%s.json"

	// PostEndpoint is the archive path pattern for a post record
	PostEndpoint = "/posts/%s.json"

	// VanityEndpoint is the live path pattern mapping a vanity name to a user
	VanityEndpoint = "/api/users/profiles/vanity/%s"

	// UserInfoEndpoint is the live path pattern for the auxiliary user record
	UserInfoEndpoint = "/api/users/profiles/%s"

	// CreatedLayout is the timestamp layout of the archived "created" field
	CreatedLayout = "2006-01-02T15:04:05.999999999"

	// DisplayLayout is the human-readable form "created" is rewritten to
	DisplayLayout = "January 02, 2006 03:04:05 PM"
)

func joinURL(base, pattern, id string) string {
	return strings.TrimRight(base, "/") + fmt.Sprintf(pattern, url.PathEscape(id))
}

// ProfileURL constructs the archive URL of a user's profile record
func ProfileURL(archiveBase, userID string) string {
	return joinURL(archiveBase, ProfileEndpoint, userID)
}

// PostURL constructs the archive URL of a post record
func PostURL(archiveBase string, postID PostID) string {
	return joinURL(archiveBase, PostEndpoint, postID.String())
}

// VanityURL constructs the live-service vanity lookup URL
func VanityURL(apiBase, vanity string) string {
	return joinURL(apiBase, VanityEndpoint, vanity)
}

// UserInfoURL constructs the live-service auxiliary info URL
func UserInfoURL(apiBase, userID string) string {
	return joinURL(apiBase, UserInfoEndpoint, userID)
}

// FormatCreated rewrites an archived timestamp such as
// "2021-01-02T03:04:05.678" into "January 02, 2021 03:04:05 AM".
func FormatCreated(created string) (string, error) {
	t, err := time.Parse(CreatedLayout, created)
	if err != nil {
		return "", err
	}
	return t.Format(DisplayLayout), nil
}
