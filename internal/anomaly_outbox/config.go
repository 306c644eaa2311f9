package anomaly_outbox

import (
	"github.com/caarlos0/env"
)

type Config struct {
	DetectorPollInterval  int   `json:"detector_poll_interval" env:"DAEMON_ANOMALY_DETECTOR_POLL_INTERVAL" envDefault:"60000"`
	PublisherPollInterval int   `json:"publisher_poll_interval" env:"DAEMON_ANOMALY_PUBLISHER_POLL_INTERVAL" envDefault:"250"`
	WorkersCount          int64 `json:"workers_count" env:"DAEMON_WORKERS_COUNT" envDefault:"5"`

	HighValueThreshold     float64 `json:"high_value_threshold" env:"ANOMALY_HIGH_VALUE_THRESHOLD" envDefault:"10000"`
	HighFrequencyThreshold int     `json:"high_frequency_threshold" env:"ANOMALY_HIGH_FREQUENCY_THRESHOLD" envDefault:"5"`

	KafkaAnomalyAlertsTopic string `json:"kafka_anomaly_alerts_topic" env:"KAFKA_ANOMALY_ALERTS_TOPIC" envDefault:"anomaly_alerts"`
	KafkaBatchTimeout       int    `json:"kafka_batch_timeout" env:"KAFKA_ANOMALY_ALERTS_BATCH_TIMEOUT" envDefault:"50"`
}

func MustNewConfig() *Config {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	return c
}
