package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// DateLayout is the calendar-date format used for check-in/check-out.
const DateLayout = "2006-01-02"

const (
	// DefaultSessionTTL время жизни сессии пользователя в кэше
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultMaxRetries число попыток синхронизации одной операции
	DefaultMaxRetries = 3

	// DefaultProbeIntervalSeconds интервал проверки соединения
	DefaultProbeIntervalSeconds = 15

	// DefaultDrainBatchSize максимальное число операций за один проход
	DefaultDrainBatchSize = 100

	// RateLimitRequests количество запросов в окне для API
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов в секундах
	RateLimitWindow = 60
)
