package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"campflow/config"
	"campflow/database/repository/bookingrec"
	"campflow/models"

	"github.com/hibiken/asynq"
)

const TypeExpirePendingPayment = "booking:expire_pending_payment"

// ExpiryTaskPayload identifies the booking to re-check.
type ExpiryTaskPayload struct {
	GlobalID string `json:"globalId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ExpiryClient enqueues deferred pending-payment checks. It satisfies the
// scheduler the submission pipeline expects.
type ExpiryClient struct {
	client *asynq.Client
}

func NewExpiryClient() *ExpiryClient {
	return &ExpiryClient{client: asynq.NewClient(redisOpts())}
}

// ScheduleExpiryCheck enqueues a check for the booking after the given delay.
func (c *ExpiryClient) ScheduleExpiryCheck(globalID string, in time.Duration) error {
	payload, err := json.Marshal(ExpiryTaskPayload{GlobalID: globalID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeExpirePendingPayment, payload)
	_, err = c.client.Enqueue(task, asynq.ProcessIn(in), asynq.MaxRetry(3))
	return err
}

func (c *ExpiryClient) Close() error {
	return c.client.Close()
}

// InitExpiryWorker runs the async worker in background. Bookings still
// awaiting payment when their check fires are flipped to expired.
func InitExpiryWorker(records bookingrec.Repository) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpirePendingPayment, handleExpiryTask(records))

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleExpiryTask(records bookingrec.Repository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ExpiryTaskPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] invalid payload: %v", err)
			return err
		}

		record, err := records.GetByGlobalID(ctx, p.GlobalID)
		if err != nil {
			log.Printf("[ExpiryHandler] lookup failed for booking %s: %v", p.GlobalID, err)
			return err
		}
		if record.Status != models.BookingStatusPendingPayment {
			// Payment completed or the booking was cancelled in the meantime.
			return nil
		}

		if err := records.UpdateStatus(ctx, p.GlobalID, models.BookingStatusExpired); err != nil {
			log.Printf("[ExpiryHandler] failed to expire booking %s: %v", p.GlobalID, err)
			return err
		}
		log.Printf("[ExpiryHandler] booking %s expired without payment", p.GlobalID)
		return nil
	}
}
