package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8000"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"kisansarathi"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Browser origins allowed to call the API with credentials
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`
	CognitoAdminGroup string `envconfig:"COGNITO_ADMIN_GROUP" default:"admins"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"ks_session"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"3600"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Object storage. STORAGE_BACKEND is either "s3" or "supabase".
	StorageBackend  string `envconfig:"STORAGE_BACKEND" default:"s3"`
	DocumentsBucket string `envconfig:"DOCUMENTS_BUCKET" default:"documents"`
	VideosBucket    string `envconfig:"VIDEOS_BUCKET" default:"generated-videos"`

	// Supabase Storage
	SupabaseURL            string `envconfig:"SUPABASE_URL"`
	SupabaseServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`

	// Gemini
	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	// Weather
	OpenWeatherAPIKey   string `envconfig:"OPENWEATHER_API_KEY"`
	RedisURL            string `envconfig:"REDIS_URL"`
	WeatherCacheTTLSec  int    `envconfig:"WEATHER_CACHE_TTL_SEC" default:"600"`
	WeatherTimeoutSec   int    `envconfig:"WEATHER_TIMEOUT_SEC" default:"10"`
	SoilAnalysisTimeout int    `envconfig:"SOIL_ANALYSIS_TIMEOUT_SEC" default:"60"`
}
