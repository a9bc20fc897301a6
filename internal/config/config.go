package config

import (
	"os"
	"strconv"
	"time"

	"lookup_bot/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	BotToken    string
	BotUsername string
	AdminID     int64

	// Credit economy
	DailyCredits    int64
	ReferralCredits int64

	// External lookup service
	LookupBaseURL string
	LookupTimeout time.Duration

	// Required-membership channel
	SupportChannel     string
	SupportChannelLink string

	// Persistence: Redis when RedisAddr is set, JSON files otherwise
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	DataFile        string
	BannedUsersFile string

	// Admin HTTP API
	JWTSecret   string
	AdminAPIKey string

	APIRateLimit  int
	APIRateWindow time.Duration

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, .env file included.
func Load() *Config {
	_ = godotenv.Load()

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	var adminID int64
	if v := os.Getenv("ADMIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			logger.Fatal("ADMIN_ID is not a valid user id", "value", v)
		}
		adminID = id
	} else {
		logger.Warn("ADMIN_ID is not set, admin commands are disabled")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		logger.Fatal("API_BASE_URL is not set")
	}

	lookupTimeout := 15 * time.Second
	if v := os.Getenv("LOOKUP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			lookupTimeout = time.Duration(n) * time.Second
		}
	}

	dailyCredits := int64(3)
	if v := os.Getenv("DAILY_CREDITS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			dailyCredits = n
		}
	}

	referralCredits := int64(3)
	if v := os.Getenv("REFERRAL_CREDITS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			referralCredits = n
		}
	}

	channel := os.Getenv("SUPPORT_CHANNEL")
	channelLink := os.Getenv("SUPPORT_CHANNEL_LINK")
	if channelLink == "" && channel != "" {
		channelLink = "https://t.me/" + channel
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "bot_data.json"
	}

	bannedFile := os.Getenv("BANNED_USERS_FILE")
	if bannedFile == "" {
		bannedFile = "banned_users.json"
	}

	apiRateLimit := 10
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:            port,
		BotToken:           botToken,
		BotUsername:        os.Getenv("BOT_USERNAME"),
		AdminID:            adminID,
		DailyCredits:       dailyCredits,
		ReferralCredits:    referralCredits,
		LookupBaseURL:      baseURL,
		LookupTimeout:      lookupTimeout,
		SupportChannel:     channel,
		SupportChannelLink: channelLink,
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		DataFile:           dataFile,
		BannedUsersFile:    bannedFile,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AdminAPIKey:        os.Getenv("ADMIN_API_KEY"),
		APIRateLimit:       apiRateLimit,
		APIRateWindow:      apiRateWindow,
		LogLevel:           os.Getenv("LOG_LEVEL"),
		LogJSON:            os.Getenv("LOG_JSON") == "true",
	}
}
