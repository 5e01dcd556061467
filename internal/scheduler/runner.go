// Package scheduler 基于 robfig/cron 的定时任务（支持秒级表达式）
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner 定时任务运行器；同一任务上一次未结束时跳过本次触发
type Runner struct {
	cron    *cron.Cron
	logger  *logrus.Logger
	baseCtx context.Context
}

func New(logger *logrus.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	cl := cronLogger{logger: logger}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add 注册任务；timeout > 0 时每次执行使用带超时的 context
func (r *Runner) Add(name, spec string, timeout time.Duration, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		ctx := r.baseCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		r.logger.WithField("job", name).Debug("定时任务开始")
		job(ctx)
		r.logger.WithFields(logrus.Fields{
			"job":     name,
			"elapsed": time.Since(start).String(),
		}).Debug("定时任务结束")
	})
	if err != nil {
		return 0, fmt.Errorf("注册定时任务%s失败(%s): %w", name, spec, err)
	}
	return id, nil
}

// Next 任务下一次触发时间
func (r *Runner) Next(id cron.EntryID) time.Time {
	return r.cron.Entry(id).Next
}

func (r *Runner) Start() {
	r.logger.Info("定时任务已启动")
	r.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("定时任务已停止")
}

// cronLogger 将 cron 内部日志转到 logrus
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(toFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).WithFields(toFields(keysAndValues)).Error("cron: " + msg)
}

func toFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
