package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andikadwp/buyit/internal/domain/model"
	repo "github.com/andikadwp/buyit/internal/repository"
)

const (
	defaultSweepInterval = 10 * time.Minute
	defaultPendingTTL    = 24 * time.Hour
	defaultBatchSize     = 100
)

// Options は放置PENDING注文掃除の設定。
type Options struct {
	Logger    *logrus.Entry
	Interval  time.Duration
	TTL       time.Duration
	BatchSize int
}

type Option func(*Options)

func WithLogger(logger *logrus.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.Interval = interval
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.TTL = ttl
	}
}

func WithBatchSize(batchSize int) Option {
	return func(opts *Options) {
		opts.BatchSize = batchSize
	}
}

// PendingSweeper は支払いに到達しないまま放置されたPENDING注文を
// 一定時間後にCANCELEDへ倒す。チェックアウト本体は孤児を作りうる設計なので、
// 後始末はこの別仕事に切り出してある。
// PENDINGの時点では在庫を引いていないため、在庫戻しは不要。
type PendingSweeper struct {
	tx        repo.TransactionManager
	logger    *logrus.Entry
	interval  time.Duration
	ttl       time.Duration
	batchSize int
}

func NewPendingSweeper(tx repo.TransactionManager, options ...Option) *PendingSweeper {
	opts := Options{
		Interval:  defaultSweepInterval,
		TTL:       defaultPendingTTL,
		BatchSize: defaultBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "pending-order-sweeper")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultPendingTTL
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	return &PendingSweeper{
		tx:        tx,
		logger:    logger,
		interval:  opts.Interval,
		ttl:       opts.TTL,
		batchSize: opts.BatchSize,
	}
}

// Run はctxが切られるまで周期実行する。
func (w *PendingSweeper) Run(ctx context.Context) {
	w.sweep(ctx, time.Now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx, time.Now())
		}
	}
}

func (w *PendingSweeper) sweep(ctx context.Context, now time.Time) {
	canceled, err := w.SweepOnce(ctx, now)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.WithError(err).Warn("pending order sweep failed")
		return
	}

	if canceled > 0 {
		w.logger.WithField("canceled", canceled).Info("stale pending orders canceled")
	}
}

// SweepOnce はTTLを超えたPENDING注文をbatchSizeずつCANCELEDにする。
// 返り値は今回倒した件数。
func (w *PendingSweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-w.ttl)

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		var batch int
		err := w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			stale, err := r.Orders().ListStalePending(ctx, cutoff, w.batchSize)
			if err != nil {
				return err
			}
			for _, o := range stale {
				if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCanceled); err != nil {
					return err
				}
			}
			batch = len(stale)
			return nil
		})
		if err != nil {
			return total, err
		}

		total += batch
		if batch < w.batchSize {
			return total, nil
		}
	}
}
