// Package publishers delivers scored-article events to configured sinks:
// cloud queues (AWS SQS, AWS SNS, GCP Pub/Sub) or plain HTTP endpoints.
// Sinks are declared in a YAML or JSON file and built through a registry.
package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// Event is the message emitted for every article persisted in a run.
type Event struct {
	RunID       string    `json:"run_id"`
	ArticleID   string    `json:"article_id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Label       string    `json:"label"`
	Score       float64   `json:"score"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	ScoredAt    time.Time `json:"scored_at"`
}

// Publisher delivers events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface publishers use; it matches the pipeline's
// structured logger so either can be passed in.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// configFile is the on-disk shape of the publishers declaration file.
type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig is one declared sink.
type PublisherConfig struct {
	ID      string                `json:"id" yaml:"id"`
	Type    string                `json:"type" yaml:"type"`
	Enabled *bool                 `json:"enabled" yaml:"enabled"`
	Queue   *QueuePublisherConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPPublisherConfig  `json:"http" yaml:"http"`
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// QueuePublisherConfig selects a cloud queue provider.
type QueuePublisherConfig struct {
	Provider string                 `json:"provider" yaml:"provider"`
	SQS      *AWSSQSPublisherConfig `json:"sqs" yaml:"sqs"`
	SNS      *AWSSNSPublisherConfig `json:"sns" yaml:"sns"`
	GCP      *GCPQueueConfig        `json:"gcp" yaml:"gcp"`
}

// AWSSQSPublisherConfig holds AWS SQS settings.
type AWSSQSPublisherConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSPublisherConfig holds AWS SNS settings.
type AWSSNSPublisherConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPQueueConfig holds Pub/Sub topic settings.
type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoadConfigs reads sink declarations from a YAML or JSON file. Environment
// references like ${AWS_SECRET} inside the file are expanded before decoding.
func LoadConfigs(path string) ([]PublisherConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	expanded := []byte(os.ExpandEnv(string(raw)))

	var file configFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(expanded, &file)
	default:
		err = yaml.Unmarshal(expanded, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode publishers file: %w", err)
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file declares no sinks")
	}

	seen := make(map[string]struct{}, len(file.Publishers))
	out := make([]PublisherConfig, 0, len(file.Publishers))
	for i, cfg := range file.Publishers {
		cfg.ID = strings.TrimSpace(cfg.ID)
		cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
		if cfg.Queue != nil {
			cfg.Queue.Provider = strings.ToLower(strings.TrimSpace(cfg.Queue.Provider))
		}
		if cfg.HTTP != nil {
			cfg.HTTP.Method = strings.ToUpper(strings.TrimSpace(cfg.HTTP.Method))
			if cfg.HTTP.Method == "" {
				cfg.HTTP.Method = httpDefaultMethod
			}
			if cfg.HTTP.TimeoutSeconds <= 0 {
				cfg.HTTP.TimeoutSeconds = httpDefaultTimeoutSeconds
			}
		}

		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		out = append(out, cfg)
	}
	return out, nil
}

// EnabledConfigs filters out disabled sink declarations.
func EnabledConfigs(cfgs []PublisherConfig) []PublisherConfig {
	out := make([]PublisherConfig, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for publisher %q", cfg.ID)
		}
		return validateQueueConfig(cfg.ID, cfg.Queue)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for publisher %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for publisher %q", cfg.ID)
		}
		return nil
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for publisher %q", cfg.Type, cfg.ID)
	}
}

func validateQueueConfig(id string, cfg *QueuePublisherConfig) error {
	switch cfg.Provider {
	case QueueProviderAWSSQS:
		if cfg.SQS == nil || cfg.SQS.QueueURL == "" || cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.uri and sqs.region are required for publisher %q", id)
		}
		if cfg.SQS.AccessKeyID == "" || cfg.SQS.SecretAccessKey == "" {
			return fmt.Errorf("sqs credentials are required for publisher %q", id)
		}
	case QueueProviderAWSSNS:
		if cfg.SNS == nil || cfg.SNS.TopicARN == "" || cfg.SNS.Region == "" {
			return fmt.Errorf("sns.topic_arn and sns.region are required for publisher %q", id)
		}
		if cfg.SNS.AccessKeyID == "" || cfg.SNS.SecretAccessKey == "" {
			return fmt.Errorf("sns credentials are required for publisher %q", id)
		}
	case QueueProviderGCP:
		if cfg.GCP == nil || cfg.GCP.ProjectID == "" || cfg.GCP.Topic == "" {
			return fmt.Errorf("gcp.project_id and gcp.topic are required for publisher %q", id)
		}
	default:
		return fmt.Errorf("queue provider %q not supported for publisher %q", cfg.Provider, id)
	}
	return nil
}
