package resolution

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"soulbound/internal/resolution/metrics"
)

const (
	RequestsTopic = "soulbound.resolution.requests"
	ResultsTopic  = "soulbound.resolution.results"

	// ResponderGroup is the consumer group of identity-side responders.
	ResponderGroup = "soulbound-identity-responder"
)

// ConsumerOpts returns the client options for a group consumer of topic.
// Offsets are committed after a record is handled.
func ConsumerOpts(group, topic string) []kgo.Opt {
	return []kgo.Opt{
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
}

// KafkaProducer is the Transport that publishes requests to RequestsTopic.
type KafkaProducer struct {
	client *kgo.Client
}

func NewKafkaProducer(client *kgo.Client) *KafkaProducer {
	return &KafkaProducer{client: client}
}

func (p *KafkaProducer) Enqueue(ctx context.Context, req Request) error {
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode resolution request: %w", err)
	}
	record := &kgo.Record{Topic: RequestsTopic, Key: []byte(req.Token), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish resolution request: %w", err)
	}
	return nil
}

// Responder runs next to an identity registry: it answers requests from
// RequestsTopic and publishes results to ResultsTopic.
type Responder struct {
	client   *kgo.Client
	resolver Resolver
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewResponder(client *kgo.Client, resolver Resolver, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Responder {
	return &Responder{client: client, resolver: resolver, timeout: timeout, logger: logger, metrics: m}
}

func (r *Responder) Run(ctx context.Context) error {
	return consume(ctx, r.client, r.logger, r.handle)
}

func (r *Responder) handle(ctx context.Context, record *kgo.Record) error {
	var req Request
	if err := json.Unmarshal(record.Value, &req); err != nil {
		// Without a token there is nobody to answer.
		r.logger.WarnContext(ctx, "dropping malformed resolution request",
			"offset", record.Offset,
			"error", err,
		)
		return nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "resolution.respond")
	defer span.End()
	span.SetAttributes(
		attribute.String("resolution.token", req.Token.String()),
		attribute.String("resolution.kind", string(req.Kind)),
	)

	start := time.Now()
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	res := Resolve(lookupCtx, r.resolver, req)
	cancel()
	r.metrics.ObserveResult(string(req.Kind), res.Failed(), time.Since(start).Seconds())

	value, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode resolution result: %w", err)
	}
	out := &kgo.Record{Topic: ResultsTopic, Key: []byte(res.Token), Value: value}
	if err := r.client.ProduceSync(ctx, out).FirstErr(); err != nil {
		return fmt.Errorf("publish resolution result: %w", err)
	}
	return nil
}

// ResultConsumer delivers results from ResultsTopic to a Handler.
type ResultConsumer struct {
	client *kgo.Client
	logger *slog.Logger
}

func NewResultConsumer(client *kgo.Client, logger *slog.Logger) *ResultConsumer {
	return &ResultConsumer{client: client, logger: logger}
}

func (c *ResultConsumer) Run(ctx context.Context, handler Handler) error {
	return consume(ctx, c.client, c.logger, func(ctx context.Context, record *kgo.Record) error {
		var res Result
		if err := json.Unmarshal(record.Value, &res); err != nil {
			c.logger.WarnContext(ctx, "dropping malformed resolution result",
				"offset", record.Offset,
				"error", err,
			)
			return nil
		}
		return handler.HandleResolution(ctx, res)
	})
}

// consume polls until ctx is done. Offsets are committed once per poll for
// the records handled successfully; a failed record is logged and skipped.
func consume(ctx context.Context, client *kgo.Client, logger *slog.Logger, fn func(context.Context, *kgo.Record) error) error {
	for {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil || fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			logger.ErrorContext(ctx, "kafka fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var done []*kgo.Record
		fetches.EachRecord(func(record *kgo.Record) {
			if err := fn(ctx, record); err != nil {
				logger.ErrorContext(ctx, "kafka record handling failed",
					"topic", record.Topic,
					"offset", record.Offset,
					"error", err,
				)
				return
			}
			done = append(done, record)
		})
		if len(done) == 0 {
			continue
		}
		if err := client.CommitRecords(ctx, done...); err != nil && ctx.Err() == nil {
			logger.WarnContext(ctx, "kafka commit failed", "error", err)
		}
	}
}
