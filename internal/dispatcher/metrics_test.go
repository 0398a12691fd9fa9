package dispatcher_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dshills/magicshell/internal/dispatcher"
	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/option"
)

var (
	lineA = handler.KeyOf(handler.KindLine, "a")
	cellB = handler.KeyOf(handler.KindCell, "b")
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		result handler.Result
		want   dispatcher.Outcome
	}{
		{handler.Success(1), dispatcher.OutcomeOK},
		{handler.Error(&dispatcher.NotFoundError{Kind: handler.KindLine, Name: "x"}), dispatcher.OutcomeNotFound},
		{handler.Error(fmt.Errorf("%w: line_x", dispatcher.ErrCancelled)), dispatcher.OutcomeCancelled},
		{handler.Error(dispatcher.ErrChainTerminated), dispatcher.OutcomeSkipped},
		{handler.Error(&dispatcher.InvocationError{Err: errors.New("boom")}), dispatcher.OutcomeFault},
	}
	for _, tt := range tests {
		if got := dispatcher.OutcomeOf(tt.result); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %v, want %v", tt.result.Error, got, tt.want)
		}
	}
}

func TestMetricsCounters(t *testing.T) {
	m := dispatcher.NewMetrics()

	m.Record(lineA, 10*time.Millisecond, handler.Success(nil))
	m.Record(lineA, 30*time.Millisecond, handler.Error(&dispatcher.InvocationError{Err: errors.New("x")}))
	m.Record(cellB, 20*time.Millisecond, handler.Success(nil))
	m.Record(handler.KeyOf(handler.KindSticky, "b"), 20*time.Millisecond, handler.Error(&dispatcher.NotFoundError{}))
	m.RecordFallback("cell_b")
	m.RecordPanic("line_a")

	if m.TotalDispatches() != 4 || m.TotalErrors() != 2 || m.TotalPanics() != 1 || m.TotalFallbacks() != 1 {
		t.Errorf("totals = %d/%d/%d/%d", m.TotalDispatches(), m.TotalErrors(), m.TotalPanics(), m.TotalFallbacks())
	}
	if m.Outcomes(dispatcher.OutcomeFault) != 1 || m.Outcomes(dispatcher.OutcomeNotFound) != 1 {
		t.Errorf("faults = %d not found = %d", m.Outcomes(dispatcher.OutcomeFault), m.Outcomes(dispatcher.OutcomeNotFound))
	}
	if m.KindDispatches(handler.KindLine) != 2 || m.KindDispatches(handler.KindCell) != 2 {
		t.Errorf("line = %d cell = %d", m.KindDispatches(handler.KindLine), m.KindDispatches(handler.KindCell))
	}
	if m.AverageDuration() != 20*time.Millisecond {
		t.Errorf("AverageDuration() = %v", m.AverageDuration())
	}

	a := m.MagicStats("line_a")
	if a.MinDuration != 10*time.Millisecond || a.MaxDuration != 30*time.Millisecond {
		t.Errorf("min/max = %v/%v", a.MinDuration, a.MaxDuration)
	}
	if a.ErrorRate() != 50 || a.FaultCount != 1 || a.PanicCount != 1 || a.LastOutcome != dispatcher.OutcomeFault {
		t.Errorf("line_a = %+v", a)
	}
	if b := m.MagicStats("cell_b"); b.FallbackCount != 1 || b.DispatchCount != 2 || b.FaultCount != 0 {
		t.Errorf("cell_b = %+v", b)
	}
	if m.MagicStats("missing") != nil {
		t.Error("expected nil stats for unknown magic")
	}
}

func TestMetricsFallbackBeforeDispatch(t *testing.T) {
	m := dispatcher.NewMetrics()
	m.RecordFallback("line_x")
	m.Record(handler.KeyOf(handler.KindLine, "x"), 5*time.Millisecond, handler.Success(nil))

	if x := m.MagicStats("line_x"); x.MinDuration != 5*time.Millisecond {
		t.Errorf("MinDuration = %v, want 5ms", x.MinDuration)
	}
}

func TestMetricsTopAndSnapshot(t *testing.T) {
	m := dispatcher.NewMetrics()
	busy := handler.KeyOf(handler.KindLine, "busy")
	for i := 0; i < 3; i++ {
		m.Record(busy, time.Millisecond, handler.Success(nil))
	}
	m.Record(handler.KeyOf(handler.KindLine, "idle"), time.Millisecond, handler.Error(fmt.Errorf("%w", dispatcher.ErrCancelled)))

	top := m.TopMagics(5)
	if len(top) != 2 || top[0].Name != "line_busy" {
		t.Errorf("TopMagics() = %+v", top)
	}

	snap := m.Snapshot()
	if snap.TotalDispatches != 4 || snap.MagicCount != 2 || snap.AverageDuration != time.Millisecond {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Cancelled != 1 || snap.TotalErrors != 1 || snap.Faults != 0 {
		t.Errorf("snapshot outcomes = %+v", snap)
	}

	m.Reset()
	if m.TotalDispatches() != 0 || len(m.TopMagics(1)) != 0 || m.KindDispatches(handler.KindLine) != 0 {
		t.Error("Reset() left data behind")
	}
}

func TestMetricsCountSkippedDispatches(t *testing.T) {
	d, _, _ := newDispatcher(t, dispatcher.DefaultConfig().WithMetrics())
	mustRegister(t, d, handler.New(handler.KindLine, "fail", func(*execctx.ExecutionContext, handler.Call) (any, error) {
		return nil, errors.New("no")
	}))

	chain := d.Chain()
	chain.Dispatch(context.Background(), handler.KindLine, "fail", option.Raw(""))
	chain.Dispatch(context.Background(), handler.KindLine, "fail", option.Raw(""))

	m := d.Metrics()
	if m.Outcomes(dispatcher.OutcomeFault) != 1 || m.Outcomes(dispatcher.OutcomeSkipped) != 1 {
		t.Errorf("faults = %d skipped = %d", m.Outcomes(dispatcher.OutcomeFault), m.Outcomes(dispatcher.OutcomeSkipped))
	}
}
