// Package constants provides shared constants used throughout coursemap.
// This includes storage keys, timeouts, retry and paging defaults that
// must agree between the stores, the client and the CLI.
package constants

import "time"

// Storage keys used in the device key-value store.
const (
	// CoursesKey holds the JSON array of course records
	CoursesKey = "@courses_db"

	// TeachersKey holds the JSON array of teacher records
	TeachersKey = "@teachers_db"

	// UsersKey holds the JSON array of local-auth user records
	UsersKey = "@users_db"

	// SessionKey holds the current session user
	SessionKey = "auth_user"

	// InteractionsKey holds the persisted reducer root for wishlist, favorites,
	// cart, enrollment and ratings
	InteractionsKey = "persist:root"

	// ProfileKeyPrefix starts every @profile_<field>_<email> override key
	ProfileKeyPrefix = "@profile_"

	// ChatKeyPrefix starts every chat_<teacherId>_<studentId> thread key
	ChatKeyPrefix = "chat_"
)

// Remote collection names.
const (
	CoursesCollection  = "courses"
	TeachersCollection = "teachers"
)

// Timeout and retry constants for the remote document store.
const (
	// RemoteTimeout bounds a single remote call
	RemoteTimeout = 30 * time.Second

	// MaxRetries is the number of attempts made for a retryable remote call
	MaxRetries = 3

	// RetryBackoff is multiplied by the attempt number between retries
	RetryBackoff = 1 * time.Second

	// CacheTTL is how long remote listing results are served from memory
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often expired cache entries are purged
	CacheCleanupInterval = 10 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 2 * time.Minute
)

// Paging and validation limits.
const (
	// DefaultPerPage is the page size used when none is given
	DefaultPerPage = 10

	// MinPasswordLength is the shortest accepted local-auth password
	MinPasswordLength = 6

	// MinRating and MaxRating bound a single course rating
	MinRating = 1
	MaxRating = 5

	// AdminEmailSuffix grants the admin role at registration
	AdminEmailSuffix = "@admin.com"
)

// Placeholder values applied during course normalization.
const (
	UnknownInstructorName   = "Unknown"
	UnknownInstructorAvatar = "https://picsum.photos/seed/placeholder/40/40"
)

// File permission constants define standard Unix file permissions.
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
