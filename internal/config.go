package internal

import "time"

type Config struct {
	NumberOfLanes        int           `env:"NUMBER_OF_LANES,required=true"`
	LaneBufferSize       int           `env:"LANE_BUFFER_SIZE,required=true"`
	MaxRetries           int           `env:"MAX_RETRIES,required=true"`
	RetryBackoff         time.Duration `env:"RETRY_BACKOFF,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,required=true"`
	LatencyThreshold     time.Duration `env:"LATENCY_THRESHOLD,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	StallTicks           int           `env:"STALL_TICKS,required=true"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,required=true"`
	DedupReservationTTL  time.Duration `env:"DEDUP_RESERVATION_TTL,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	Host                 string        `env:"HOST,default=localhost"`
	DebugPort            int           `env:"DEBUG_PORT,default=8080"`
}
