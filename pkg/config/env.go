package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret   = "JWT_SECRET"
	EnvJWTTokenTTL = "JWT_TOKEN_TTL"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUser     = "SMTP_USER"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvNotifyEmail  = "NOTIFY_EMAIL"

	EnvCloudinaryCloudName = "CLOUDINARY_CLOUD_NAME"
	EnvCloudinaryAPIKey    = "CLOUDINARY_API_KEY"
	EnvCloudinaryAPISecret = "CLOUDINARY_API_SECRET"

	EnvScheduleEventsTopic = "SCHEDULE_EVENTS_TOPIC"

	EnvAllowPastStatusUpdate = "SCHEDULE_ALLOW_PAST_STATUS_UPDATE"
	EnvSlotLockTTL           = "SCHEDULE_SLOT_LOCK_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
