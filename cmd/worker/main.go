package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/mindease/internal/config"
	"github.com/suPer8Hu/mindease/internal/email"
	"github.com/suPer8Hu/mindease/internal/logger"
	"github.com/suPer8Hu/mindease/internal/notify"
	"github.com/suPer8Hu/mindease/internal/store/rabbitmq"
	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

var errMalformed = errors.New("malformed alert message")

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

// deliver sends one queued email. Send failures are reported but the message
// is still acked: alerts are attempted once. The send is detached from the
// worker's signal context so shutdown lets it finish within sendTimeout.
func deliver(sender notify.Sender, body []byte) error {
	e, err := rabbitmq.DecodeEmail(body)
	if err != nil || e.To == "" || e.Subject == "" {
		return errMalformed
	}
	cctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return sender.Send(cctx, e.To, e.Subject, e.Body)
}

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "mindease-worker")
	defer func() { _ = log.Sync() }()

	if !cfg.SMTPConfigured() {
		log.Fatal("SMTP_HOST and SMTP_FROM are required for the alert worker")
	}
	sender := email.NewSender(email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal("rabbit dial", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("rabbit channel", zap.Error(err))
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitAlertQueue); err != nil {
		log.Fatal("queue declare", zap.Error(err))
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatal("qos", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.RabbitAlertQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal("consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker started", zap.String("queue", cfg.RabbitAlertQueue), zap.Int("concurrency", concurrency))

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			wlog := log.With(zap.Int("worker", workerID))
			for d := range jobs {
				start := time.Now()
				err := deliver(sender, d.Body)
				switch {
				case errors.Is(err, errMalformed):
					wlog.Warn("bad message, dead-lettering")
					_ = d.Nack(false, false)
					continue
				case err != nil:
					wlog.Error("alert send failed", zap.Duration("cost", time.Since(start)), zap.Error(err))
				default:
					wlog.Info("alert sent", zap.Duration("cost", time.Since(start)))
				}
				if err := d.Ack(false); err != nil {
					wlog.Error("ack failed", zap.Error(err))
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Warn("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}
