package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	DB            Pinger
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Engagement    EngagementStore
	Comments      CommentStore
	Tweets        TweetStore
	Playlists     PlaylistStore
	Notifications NotificationStore
	History       HistoryStore
	Media         MediaStore
	Fanout        FanoutQueue
	Mailer        Mailer
	AuthLimiter   RateLimiter

	// RequireAuth rejects anonymous requests; OptionalAuth resolves the
	// viewer when credentials are present.
	RequireAuth  func(http.Handler) http.Handler
	OptionalAuth func(http.Handler) http.Handler
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux using
// method+pattern routes.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	required := deps.RequireAuth
	optional := deps.OptionalAuth
	if required == nil {
		required = func(next http.Handler) http.Handler { return next }
	}
	if optional == nil {
		optional = func(next http.Handler) http.Handler { return next }
	}

	auth := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, required(fn))
	}
	open := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, optional(fn))
	}

	health := HealthHandler{DB: deps.DB}
	accounts := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Mailer: deps.Mailer, Limiter: deps.AuthLimiter}
	users := UserHandler{Users: deps.Users, History: deps.History, Media: deps.Media}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, History: deps.History, Media: deps.Media, Fanout: deps.Fanout}
	media := MediaHandler{Media: deps.Media}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}
	likes := LikeHandler{Engagement: deps.Engagement, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	subscriptions := SubscriptionHandler{Engagement: deps.Engagement, Users: deps.Users}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Users: deps.Users}
	dashboard := DashboardHandler{Videos: deps.Videos}
	notifications := NotificationHandler{Notifications: deps.Notifications}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/signup", accounts.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", accounts.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", accounts.Refresh)
	mux.HandleFunc("POST /api/v1/auth/password-reset", accounts.RequestPasswordReset)
	auth("POST /api/v1/auth/logout", accounts.Logout)

	auth("GET /api/v1/users/me", users.Me)
	auth("PATCH /api/v1/users/me", users.UpdateAccount)
	auth("POST /api/v1/users/me/password", users.ChangePassword)
	auth("POST /api/v1/users/me/avatar", users.UploadAvatar)
	auth("POST /api/v1/users/me/cover", users.UploadCover)
	auth("GET /api/v1/users/me/history", users.WatchHistory)
	auth("GET /api/v1/users/me/liked-videos", likes.LikedVideos)

	open("GET /api/v1/channels/{username}", users.Channel)
	open("GET /api/v1/channels/{username}/tweets", tweets.ListForChannel)
	auth("POST /api/v1/channels/{id}/subscribe", subscriptions.Toggle)
	open("GET /api/v1/channels/{id}/subscribers", subscriptions.Subscribers)
	open("GET /api/v1/users/{id}/channels", subscriptions.Channels)
	open("GET /api/v1/users/{id}/playlists", playlists.ListForUser)

	auth("POST /api/v1/media", media.Upload)

	open("GET /api/v1/videos", videos.Feed)
	auth("POST /api/v1/videos", videos.Create)
	open("GET /api/v1/videos/{id}", videos.Detail)
	auth("PATCH /api/v1/videos/{id}", videos.Update)
	auth("DELETE /api/v1/videos/{id}", videos.Delete)
	auth("PATCH /api/v1/videos/{id}/publish", videos.TogglePublish)
	auth("POST /api/v1/videos/{id}/like", likes.ToggleVideo)

	open("GET /api/v1/videos/{id}/comments", comments.List)
	auth("POST /api/v1/videos/{id}/comments", comments.Add)
	auth("PATCH /api/v1/comments/{id}", comments.Update)
	auth("DELETE /api/v1/comments/{id}", comments.Delete)
	auth("POST /api/v1/comments/{id}/like", likes.ToggleComment)

	auth("POST /api/v1/tweets", tweets.Create)
	auth("PATCH /api/v1/tweets/{id}", tweets.Update)
	auth("DELETE /api/v1/tweets/{id}", tweets.Delete)
	auth("POST /api/v1/tweets/{id}/like", likes.ToggleTweet)

	auth("POST /api/v1/playlists", playlists.Create)
	open("GET /api/v1/playlists/{id}", playlists.Detail)
	auth("PATCH /api/v1/playlists/{id}", playlists.Update)
	auth("DELETE /api/v1/playlists/{id}", playlists.Delete)
	auth("POST /api/v1/playlists/{id}/videos/{videoId}", playlists.AddVideo)
	auth("DELETE /api/v1/playlists/{id}/videos/{videoId}", playlists.RemoveVideo)

	auth("GET /api/v1/dashboard/stats", dashboard.Stats)
	auth("GET /api/v1/dashboard/videos", dashboard.VideoList)

	auth("GET /api/v1/notifications", notifications.List)
	auth("PATCH /api/v1/notifications/{id}/read", notifications.MarkRead)
	auth("POST /api/v1/notifications/read-all", notifications.MarkAllRead)
}
