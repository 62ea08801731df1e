package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddr     string
	RedisPassword string

	// RabbitMQ configuration (optional; empty disables broker notifications)
	RabbitMQURL      string
	RabbitMQExchange string

	// Application configuration
	SeedsDir          string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	ServiceKey        string
	SyncRateMax       int
	SyncRateWindow    int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
