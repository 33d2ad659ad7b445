package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	FFmpeg  FFmpegConfig
	Worker  WorkerConfig
	Session SessionConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	BodyLimitMB int
}

type StorageConfig struct {
	UploadDir    string
	ConvertedDir string
}

type FFmpegConfig struct {
	FFmpegBin        string
	FFprobeBin       string
	ProbeTimeout     time.Duration
	TranscodeTimeout time.Duration
}

type WorkerConfig struct {
	Count     int
	QueueSize int
}

type SessionConfig struct {
	Secret string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.body_limit_mb", 500)
	viper.SetDefault("storage.upload_dir", "uploads")
	viper.SetDefault("storage.converted_dir", "converted")
	viper.SetDefault("ffmpeg.binary", "ffmpeg")
	viper.SetDefault("ffmpeg.probe_binary", "ffprobe")
	viper.SetDefault("ffmpeg.probe_timeout_sec", 10)
	viper.SetDefault("ffmpeg.transcode_timeout_sec", 600)
	viper.SetDefault("worker.count", 4)
	viper.SetDefault("worker.queue_size", 100)
	viper.SetDefault("session.secret", "change-me-in-production")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("server.port"),
			Env:         viper.GetString("server.env"),
			BodyLimitMB: viper.GetInt("server.body_limit_mb"),
		},
		Storage: StorageConfig{
			UploadDir:    viper.GetString("storage.upload_dir"),
			ConvertedDir: viper.GetString("storage.converted_dir"),
		},
		FFmpeg: FFmpegConfig{
			FFmpegBin:        viper.GetString("ffmpeg.binary"),
			FFprobeBin:       viper.GetString("ffmpeg.probe_binary"),
			ProbeTimeout:     time.Duration(viper.GetInt("ffmpeg.probe_timeout_sec")) * time.Second,
			TranscodeTimeout: time.Duration(viper.GetInt("ffmpeg.transcode_timeout_sec")) * time.Second,
		},
		Worker: WorkerConfig{
			Count:     viper.GetInt("worker.count"),
			QueueSize: viper.GetInt("worker.queue_size"),
		},
		Session: SessionConfig{
			Secret: viper.GetString("session.secret"),
		},
	}

	return cfg, nil
}
