package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/internal"
)

type mailJob struct {
	Message Message
}

type mailWorker struct {
	ID         int
	WorkerPool chan chan mailJob
	JobChannel chan mailJob
	Logger     *slog.Logger
}

func newMailWorker(id int, workerPool chan chan mailJob, logger *slog.Logger) *mailWorker {
	return &mailWorker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan mailJob),
		Logger:     logger,
	}
}

func (w *mailWorker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(mailJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("mail worker processing job", "worker_id", w.ID, "to", job.Message.To)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Mailer sends messages to the external mail API through a small
// worker pool. Send queues and returns immediately; delivery failures
// are logged by the worker and never reach the caller.
type Mailer struct {
	apiURL      string
	apiKey      string
	fromAddress string
	timeout     time.Duration
	logger      *slog.Logger

	jobQueue   chan mailJob
	workerPool chan chan mailJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

const (
	defaultMailWorkers   = 4
	defaultMailQueueSize = 100
)

func NewMailer(cfg internal.MailerConfig, logger *slog.Logger) *Mailer {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	m := &Mailer{
		apiURL:      cfg.APIURL,
		apiKey:      cfg.APIKey,
		fromAddress: cfg.FromAddress,
		timeout:     cfg.Timeout,
		logger:      logger,

		maxWorkers: defaultMailWorkers,
		jobQueue:   make(chan mailJob, defaultMailQueueSize),
		workerPool: make(chan chan mailJob, defaultMailWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	m.startWorkerPool()

	return m
}

func (m *Mailer) startWorkerPool() {
	m.once.Do(func() {
		for i := 0; i < m.maxWorkers; i++ {
			worker := newMailWorker(i, m.workerPool, m.logger)
			worker.Start(m.ctx, &m.wg, m.processMailJob)
		}

		go m.dispatch()

		m.logger.Info("mailer worker pool started",
			"max_workers", m.maxWorkers,
			"queue_size", cap(m.jobQueue))
	})
}

func (m *Mailer) dispatch() {
	defer m.wg.Done()
	m.wg.Add(1)

	for {
		select {
		case job := <-m.jobQueue:
			select {
			case jobChannel := <-m.workerPool:
				select {
				case jobChannel <- job:

				case <-m.ctx.Done():
					m.logger.Info("mail dispatcher shutting down")
					return
				}
			case <-m.ctx.Done():
				m.logger.Info("mail dispatcher shutting down")
				return
			}
		case <-m.ctx.Done():
			m.logger.Info("mail dispatcher shutting down")
			return
		}
	}
}

func (m *Mailer) Shutdown() {
	m.logger.Info("shutting down mailer")
	m.cancel()
	m.wg.Wait()
	m.logger.Info("mailer shutdown complete")
}

// Send queues the message for background delivery. A full queue drops
// the message with a warning instead of blocking the caller.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	select {
	case m.jobQueue <- mailJob{Message: msg}:
		m.logger.Debug("mail job queued",
			"to", msg.To,
			"queue_length", len(m.jobQueue))
		return nil
	default:
		m.logger.Warn("mail queue full, dropping message",
			"to", msg.To,
			"queue_capacity", cap(m.jobQueue))
		return fmt.Errorf("mail queue full")
	}
}

func (m *Mailer) processMailJob(job mailJob) {
	if err := m.deliver(job.Message); err != nil {
		m.logger.Error("mail delivery failed",
			"error", err,
			"to", job.Message.To,
			"subject", job.Message.Subject)
		return
	}

	m.logger.Info("mail delivered",
		"to", job.Message.To,
		"subject", job.Message.Subject)
}

func (m *Mailer) deliver(msg Message) error {
	payload := map[string]interface{}{
		"from":    m.fromAddress,
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", m.apiURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	client := &http.Client{Timeout: m.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}
