package fetcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	windowFromMinute = 30
	windowToMinute   = 35
)

type Runner interface {
	Fetch(ctx context.Context) (Report, error)
}

// Запускает прогон в фоне, если запрос к фиду пришел с 30 по 35 минуту часа.
// Запрос не ждет окончания прогона. Одновременно идет не больше одного такого прогона.
type WindowTrigger struct {
	// Контекст приложения, а не запроса: прогон не должен обрываться вместе с запросом
	ctx     context.Context
	runner  Runner
	running atomic.Bool
	wg      sync.WaitGroup
	log     logrus.FieldLogger
}

func NewWindowTrigger(ctx context.Context, runner Runner, log logrus.FieldLogger) *WindowTrigger {
	return &WindowTrigger{
		ctx:    ctx,
		runner: runner,
		log:    log.WithField("component", "window_trigger"),
	}
}

func InWindow(now time.Time) bool {
	m := now.Minute()
	return m >= windowFromMinute && m <= windowToMinute
}

// Maybe возвращает true, если прогон был запущен
func (t *WindowTrigger) Maybe(now time.Time) bool {
	if !InWindow(now) || t.ctx.Err() != nil {
		return false
	}

	if !t.running.CompareAndSwap(false, true) {
		return false
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.running.Store(false)

		report, err := t.runner.Fetch(t.ctx)
		if err != nil {
			t.log.WithError(err).Error("triggered ingestion failed")
			return
		}

		t.log.WithFields(logrus.Fields{
			"new":      report.New,
			"inserted": report.Inserted,
		}).Info("triggered ingestion finished")
	}()

	return true
}

// Ждет завершения запущенного прогона
func (t *WindowTrigger) Wait() {
	t.wg.Wait()
}
