// Package pipeline wires the sentiment, escalation, and response
// stages into a consumer of the raw-ticket topic. Each worker owns one
// ticket end-to-end; the shared tally is the only cross-ticket state.
package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/c360/supportstream/analyze"
	"github.com/c360/supportstream/config"
	"github.com/c360/supportstream/errors"
	"github.com/c360/supportstream/escalate"
	"github.com/c360/supportstream/metric"
	"github.com/c360/supportstream/pkg/retry"
	"github.com/c360/supportstream/pkg/timestamp"
	"github.com/c360/supportstream/pkg/worker"
	"github.com/c360/supportstream/respond"
	"github.com/c360/supportstream/schema"
	"github.com/c360/supportstream/ticket"
	"github.com/c360/supportstream/transport"
)

const serviceName = "pipeline"

// submitRetryDelay paces Submit retries while the worker queue is full
const submitRetryDelay = 10 * time.Millisecond

// Pipeline orchestrates ticket processing
type Pipeline struct {
	cfg       *config.Config
	transport transport.Transport
	channel   *schema.Channel
	analyzer  *analyze.Analyzer
	responder *respond.Stage

	tally    *Tally
	pool     *worker.Pool[transport.Delivery]
	registry *metric.MetricsRegistry
	metrics  *metric.Metrics
	retryCfg retry.Config
	logger   *slog.Logger

	started bool
}

// New creates a pipeline. The transport must already be connected.
func New(
	cfg *config.Config,
	tp transport.Transport,
	channel *schema.Channel,
	analyzer *analyze.Analyzer,
	responder *respond.Stage,
	registry *metric.MetricsRegistry,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	retryCfg := errors.RetryConfig{
		MaxRetries:    cfg.Pipeline.PublishRetries,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2,
	}.ToRetryConfig()

	p := &Pipeline{
		cfg:       cfg,
		transport: tp,
		channel:   channel,
		analyzer:  analyzer,
		responder: responder,
		tally:     NewTally(cfg.Pipeline.RecentEvents),
		registry:  registry,
		metrics:   registry.CoreMetrics(),
		retryCfg:  retryCfg,
		logger:    logger.With("component", "pipeline"),
	}

	p.pool = worker.NewPool(cfg.Pipeline.Workers, cfg.Pipeline.QueueSize, p.process,
		worker.WithMetricsRegistry[transport.Delivery](registry, serviceName))
	return p
}

// Start begins consuming the raw-ticket topic
func (p *Pipeline) Start(ctx context.Context) error {
	if p.started {
		return errors.ErrAlreadyStarted
	}

	if err := p.pool.Start(ctx); err != nil {
		return errors.Wrap(err, "Pipeline", "Start", "start worker pool")
	}

	err := p.transport.Subscribe(ctx, []string{p.cfg.Topics.Raw}, p.onDelivery)
	if err != nil {
		_ = p.pool.Stop(time.Second)
		return errors.Wrap(err, "Pipeline", "Start", "subscribe to raw topic")
	}

	p.started = true
	p.metrics.RecordServiceStatus(serviceName, 1)
	p.metrics.RecordHealthStatus(serviceName, true)
	p.logger.Info("Pipeline started",
		"raw_topic", p.cfg.Topics.Raw,
		"workers", p.cfg.Pipeline.Workers)
	return nil
}

// Stop drains in-flight tickets up to the shutdown timeout
func (p *Pipeline) Stop() error {
	if !p.started {
		return errors.ErrNotStarted
	}
	p.started = false
	p.metrics.RecordServiceStatus(serviceName, 0)
	p.metrics.RecordHealthStatus(serviceName, false)

	if err := p.pool.Stop(p.cfg.ShutdownTimeout()); err != nil {
		return errors.Wrap(err, "Pipeline", "Stop", "stop worker pool")
	}
	return nil
}

// Snapshot returns the current tally for dashboard polling
func (p *Pipeline) Snapshot() Stats {
	return p.tally.Snapshot()
}

// onDelivery hands a delivery to the worker pool. A full queue blocks
// the handler rather than dropping the ticket: transports ack only
// after the handler returns, so holding the delivery here keeps the
// at-least-once contract intact until a worker frees queue space.
func (p *Pipeline) onDelivery(ctx context.Context, d transport.Delivery) {
	p.metrics.RecordMessageReceived(serviceName, d.Topic)

	for {
		err := p.pool.Submit(d)
		switch {
		case err == nil:
			return
		case stderrors.Is(err, worker.ErrQueueFull):
			p.metrics.RecordError(serviceName, "queue_full")
			select {
			case <-ctx.Done():
				// Unacked delivery is redelivered after restart
				return
			case <-time.After(submitRetryDelay):
			}
		default:
			// Pool is draining or stopped; leave the delivery unacked
			p.logger.Warn("Rejecting delivery, pool unavailable",
				"topic", d.Topic, "error", err)
			return
		}
	}
}

// process runs one ticket through all stages. Errors affect only this
// ticket.
func (p *Pipeline) process(ctx context.Context, d transport.Delivery) error {
	start := time.Now()

	record, err := p.channel.Decode(d.Topic, d.Value)
	if err != nil {
		p.metrics.RecordError(serviceName, "decode")
		p.metrics.RecordMessageProcessed(serviceName, d.Topic, "rejected")
		p.logger.Error("Rejecting undecodable record", "topic", d.Topic, "error", err)
		return nil
	}

	tk, err := ticket.DecodeTicket(record)
	if err != nil {
		p.metrics.RecordError(serviceName, "parse")
		p.metrics.RecordMessageProcessed(serviceName, d.Topic, "rejected")
		p.logger.Error("Rejecting malformed ticket", "topic", d.Topic, "error", err)
		return nil
	}
	if err := tk.Validate(); err != nil {
		p.metrics.RecordError(serviceName, "validation")
		p.metrics.RecordMessageProcessed(serviceName, d.Topic, "rejected")
		p.logger.Error("Rejecting invalid ticket", "ticket_id", tk.TicketID, "error", err)
		return nil
	}

	p.tally.Record(Event{
		TicketID:  tk.TicketID,
		State:     StateReceived,
		Timestamp: timestamp.Now(),
	})

	pt := p.analyzer.Analyze(ctx, tk)
	decision := escalate.Decide(pt.SentimentLabel, pt.UrgencyScore, pt.Category, p.cfg.Thresholds)
	pt.Priority = decision.Priority

	p.tally.Record(eventFor(pt, StateAnalyzed, decision.Escalate, timestamp.Now()))

	if err := p.publishProcessed(ctx, pt); err != nil {
		return p.fail(pt, decision, "publish_processed", err)
	}

	resp := p.responder.Generate(ctx, pt, decision)

	if err := p.publishResponse(ctx, resp, pt); err != nil {
		return p.fail(pt, decision, "publish_response", err)
	}

	p.tally.Record(eventFor(pt, StateResponded, decision.Escalate, timestamp.Now()))
	p.metrics.RecordMessageProcessed(serviceName, d.Topic, "success")
	p.metrics.RecordProcessingDuration(serviceName, "process_ticket", time.Since(start))

	p.logger.Info("Ticket processed",
		"ticket_id", tk.TicketID,
		"sentiment", pt.SentimentLabel,
		"priority", pt.Priority,
		"escalated", decision.Escalate)
	return nil
}

func (p *Pipeline) fail(pt *ticket.ProcessedTicket, decision escalate.Decision, stage string, err error) error {
	p.tally.Record(eventFor(pt, StateFailed, decision.Escalate, timestamp.Now()))
	p.metrics.RecordError(serviceName, stage)
	p.metrics.RecordMessageProcessed(serviceName, p.cfg.Topics.Raw, "failed")
	p.logger.Error("Ticket failed", "ticket_id", pt.TicketID, "stage", stage, "error", err)
	return err
}

func (p *Pipeline) publishProcessed(ctx context.Context, pt *ticket.ProcessedTicket) error {
	data, err := json.Marshal(pt)
	if err != nil {
		return errors.Wrap(err, "Pipeline", "publishProcessed", "marshal ticket")
	}
	return p.publish(ctx, p.cfg.Topics.Processed, pt.TicketID, data)
}

func (p *Pipeline) publishResponse(ctx context.Context, resp *ticket.AIResponse, pt *ticket.ProcessedTicket) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "Pipeline", "publishResponse", "marshal response")
	}
	return p.publish(ctx, p.cfg.Topics.Responses, pt.TicketID, data)
}

// publish encodes through the schema channel and retries transient
// transport failures with bounded backoff
func (p *Pipeline) publish(ctx context.Context, topic, key string, record []byte) error {
	payload, err := p.channel.Encode(ctx, topic, key, record)
	if err != nil {
		if errors.IsInvalid(err) {
			// Schema mismatch drops the record from this topic only
			p.metrics.RecordError(serviceName, "encode")
			p.logger.Error("Dropping record failing schema validation",
				"topic", topic, "key", key, "error", err)
			return nil
		}
		return errors.Wrap(err, "Pipeline", "publish", "encode record")
	}

	err = retry.Do(ctx, p.retryCfg, func() error {
		pubErr := p.transport.Publish(ctx, topic, key, payload)
		if pubErr != nil && !errors.IsTransient(pubErr) {
			return retry.NonRetryable(pubErr)
		}
		return pubErr
	})
	if err != nil {
		return errors.Wrap(err, "Pipeline", "publish", "publish after retries")
	}

	p.metrics.RecordMessagePublished(serviceName, topic)
	return nil
}
