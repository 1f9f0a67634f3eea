package constants

const (
	// Catalog list bounds
	DefaultListLimit = 20
	MinListLimit     = 1
	MaxListLimit     = 50

	// Custom videos returned by a listing
	MaxCustomVideos = 100

	// Multipart memory threshold before spilling to temp files
	MaxUploadMemory = 32 << 20

	// Login attempts: burst capacity and refill per second
	LoginRateBurst = 5
	LoginRateLimit = 1
)
