package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler はクリーンアップジョブの定期実行を行う。
// 起動直後に1回実行し、その後は指定間隔のティッカーで実行を継続する。
type Scheduler struct {
	job    *CleanupJob
	logger *slog.Logger
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
func NewScheduler(job *CleanupJob, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		job:    job,
		logger: logger,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("クリーンアップスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	if err := s.job.Run(ctx); err != nil {
		s.logger.Error("クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("クリーンアップスケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.job.Run(ctx); err != nil {
				s.logger.Error("クリーンアップジョブの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
