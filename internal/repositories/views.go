package repositories

import (
	"strings"

	"github.com/videotube/backend/internal/models"
)

// ListOptions carries 1-based pagination parameters. Invalid values are
// coerced to the defaults rather than rejected.
type ListOptions struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to positive values, defaulting to 1/10.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 10
	}
	return o
}

// Offset returns the number of rows to skip for the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// VideoFilter selects and orders rows for the public video feed.
type VideoFilter struct {
	OwnerID       string
	Query         string
	SortField     string
	SortDirection string
}

// feedSortColumns whitelists sortable feed columns. Anything else falls
// back to creation time.
var feedSortColumns = map[string]string{
	"createdAt":       "v.created_at",
	"views":           "v.views",
	"durationSeconds": "v.duration_seconds",
	"title":           "v.title",
}

// OrderClause resolves the filter's sort field and direction into a SQL
// ORDER BY expression built only from whitelisted column names.
func (f VideoFilter) OrderClause() string {
	column, ok := feedSortColumns[f.SortField]
	if !ok {
		column = "v.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.SortDirection, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// ChannelProfile is the aggregated channel view resolved by username.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatarUrl"`
	CoverImageURL     string `json:"coverImageUrl"`
	SubscribersCount  int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// OwnerCard is the owner projection embedded in a video detail view.
type OwnerCard struct {
	models.PublicProfile
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoSummary is a feed/list row joining the owner's public projection.
type VideoSummary struct {
	models.Video
	Owner models.PublicProfile `json:"owner"`
}

// VideoDetail is the single-video view with engagement fields.
type VideoDetail struct {
	models.Video
	Owner      OwnerCard `json:"owner"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
}

// CommentView is a comment row annotated with author and engagement.
type CommentView struct {
	models.Comment
	Author     models.PublicProfile `json:"author"`
	LikesCount int64                `json:"likesCount"`
	IsLiked    bool                 `json:"isLiked"`
}

// TweetView is a tweet row annotated with owner and engagement.
type TweetView struct {
	models.Tweet
	Owner      models.PublicProfile `json:"owner"`
	LikesCount int64                `json:"likesCount"`
	IsLiked    bool                 `json:"isLiked"`
}

// SubscriberRow describes one subscriber of a channel. SubscribedBack
// reports whether the queried channel subscribes to this subscriber in
// return.
type SubscriberRow struct {
	Profile          models.PublicProfile `json:"profile"`
	SubscribersCount int64                `json:"subscribersCount"`
	SubscribedBack   bool                 `json:"subscribedBack"`
}

// SubscriberPage pairs a page of subscriber rows with the exact total,
// computed independently of the page size.
type SubscriberPage struct {
	Subscribers []SubscriberRow `json:"subscribers"`
	Total       int64           `json:"total"`
}

// ChannelRow describes one channel a user subscribes to.
type ChannelRow struct {
	Profile          models.PublicProfile `json:"profile"`
	SubscribersCount int64                `json:"subscribersCount"`
	LatestVideo      *models.Video        `json:"latestVideo"`
}

// ChannelPage pairs a page of channel rows with the exact total.
type ChannelPage struct {
	Channels []ChannelRow `json:"channels"`
	Total    int64        `json:"total"`
}

// DashboardStats aggregates a channel's totals. All fields are zero when
// the channel has no rows.
type DashboardStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
}

// DashboardVideo is an owner-facing management row (published or not).
type DashboardVideo struct {
	models.Video
	LikesCount int64 `json:"likesCount"`
}

// PlaylistDetail is the aggregated playlist view with its visible videos.
type PlaylistDetail struct {
	models.Playlist
	Owner       models.PublicProfile `json:"owner"`
	Videos      []VideoSummary       `json:"videos"`
	TotalVideos int                  `json:"totalVideos"`
	TotalViews  int64                `json:"totalViews"`
}
